package amf

import (
	"fmt"
	"reflect"

	"github.com/stewi1014/amf/encio"
)

// Externalizable is implemented by types that write their own AMF3 payload.
// It must be implemented on the pointer, and the type must be registered under its class name.
type Externalizable interface {
	ReadExternal(in DataInput) error
	WriteExternal(out DataOutput) error
}

// DataInput reads an externalizable payload, sharing the reference tables of the surrounding value.
type DataInput interface {
	ReadBoolean() (bool, error)
	ReadByte() (byte, error)
	ReadShort() (int16, error)
	ReadUnsignedShort() (uint16, error)
	ReadInt() (int32, error)
	ReadUnsignedInt() (uint32, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	ReadUTF() (string, error)
	ReadUTFBytes(n uint32) (string, error)
	ReadBytes(n uint32) ([]byte, error)

	// ReadObject reads an AMF3 value.
	ReadObject() (any, error)
}

// DataOutput writes an externalizable payload, sharing the reference tables of the surrounding value.
type DataOutput interface {
	WriteBoolean(b bool) error
	WriteByte(b byte) error
	WriteShort(n int16) error
	WriteUnsignedShort(n uint16) error
	WriteInt(n int32) error
	WriteUnsignedInt(n uint32) error
	WriteFloat(f float32) error
	WriteDouble(f float64) error
	WriteUTF(s string) error
	WriteUTFBytes(s string) error
	WriteBytes(b []byte) error

	// WriteObject writes v as an AMF3 value.
	WriteObject(v any) error
}

type dataInput struct {
	d *decodeState
}

func (in dataInput) ReadBoolean() (bool, error)         { return in.d.r.ReadBool() }
func (in dataInput) ReadByte() (byte, error)            { return in.d.r.ReadByte() }
func (in dataInput) ReadShort() (int16, error)          { return in.d.r.ReadInt16() }
func (in dataInput) ReadUnsignedShort() (uint16, error) { return in.d.r.ReadUint16() }
func (in dataInput) ReadInt() (int32, error)            { return in.d.r.ReadInt32() }
func (in dataInput) ReadUnsignedInt() (uint32, error)   { return in.d.r.ReadUint32() }
func (in dataInput) ReadFloat() (float32, error)        { return in.d.r.ReadFloat32() }
func (in dataInput) ReadDouble() (float64, error)       { return in.d.r.ReadFloat64() }
func (in dataInput) ReadUTF() (string, error)           { return in.d.r.ReadUTF() }

func (in dataInput) ReadUTFBytes(n uint32) (string, error) { return in.d.r.ReadUTFBytes(n) }
func (in dataInput) ReadBytes(n uint32) ([]byte, error)    { return in.d.r.ReadBytes(n) }
func (in dataInput) ReadObject() (any, error)              { return in.d.readAMF3() }

type dataOutput struct {
	e *encodeState
}

func (out dataOutput) WriteBoolean(b bool) error         { return out.e.w.WriteBool(b) }
func (out dataOutput) WriteByte(b byte) error            { return out.e.w.WriteByte(b) }
func (out dataOutput) WriteShort(n int16) error          { return out.e.w.WriteInt16(n) }
func (out dataOutput) WriteUnsignedShort(n uint16) error { return out.e.w.WriteUint16(n) }
func (out dataOutput) WriteInt(n int32) error            { return out.e.w.WriteInt32(n) }
func (out dataOutput) WriteUnsignedInt(n uint32) error   { return out.e.w.WriteUint32(n) }
func (out dataOutput) WriteFloat(f float32) error        { return out.e.w.WriteFloat32(f) }
func (out dataOutput) WriteDouble(f float64) error       { return out.e.w.WriteFloat64(f) }
func (out dataOutput) WriteUTF(s string) error           { return out.e.w.WriteUTF(s) }
func (out dataOutput) WriteUTFBytes(s string) error      { return out.e.w.WriteUTFBytes(s) }
func (out dataOutput) WriteObject(v any) error           { return out.e.writeAMF3(reflect.ValueOf(v)) }

func (out dataOutput) WriteBytes(b []byte) error {
	_, err := out.e.w.Write(b)
	return err
}

// ArrayCollection is flex.messaging.io.ArrayCollection, a list whose payload is its source array.
type ArrayCollection struct {
	Source []any
}

// ReadExternal implements Externalizable.
func (c *ArrayCollection) ReadExternal(in DataInput) error {
	v, err := in.ReadObject()
	if err != nil {
		return err
	}

	switch source := v.(type) {
	case nil:
		c.Source = nil
	case []any:
		c.Source = source
	default:
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("ArrayCollection source is %T, want an array", v), 0)
	}
	return nil
}

// WriteExternal implements Externalizable.
func (c *ArrayCollection) WriteExternal(out DataOutput) error {
	if c.Source == nil {
		return out.WriteObject([]any{})
	}
	return out.WriteObject(c.Source)
}

// ObjectProxy is flex.messaging.io.ObjectProxy, which wraps an anonymous object.
type ObjectProxy struct {
	Object *Object
}

// ReadExternal implements Externalizable.
func (p *ObjectProxy) ReadExternal(in DataInput) error {
	v, err := in.ReadObject()
	if err != nil {
		return err
	}

	switch o := v.(type) {
	case nil:
		p.Object = nil
	case *Object:
		p.Object = o
	default:
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("ObjectProxy wraps %T, want an Object", v), 0)
	}
	return nil
}

// WriteExternal implements Externalizable.
func (p *ObjectProxy) WriteExternal(out DataOutput) error {
	if p.Object == nil {
		return out.WriteObject(NewObject(""))
	}
	return out.WriteObject(p.Object)
}
