package amf

import (
	"fmt"
	"reflect"
	"time"

	"github.com/stewi1014/amf/encio"
)

// writeAMF3 writes v as an AMF3 value.
func (e *encodeState) writeAMF3(v reflect.Value) error {
	v, ok := concrete(v)
	if !ok {
		return e.w.WriteByte(amf3Null)
	}
	return e.reg.strategy(v.Type()).amf3(e, v)
}

// writeAMF3String writes s as a string reference or inline string, without a marker.
// The empty string is never referenced.
func (e *encodeState) writeAMF3String(s string) error {
	if s == "" {
		return e.w.WriteU29(0x01)
	}
	if h, ok := e.strings[s]; ok {
		return e.w.WriteU29(uint32(h) << 1)
	}
	if len(s) > encio.MaxInt29 {
		return encio.NewError(encio.ErrFormat, fmt.Sprintf("string of %v bytes is too long", len(s)), 0)
	}

	e.strings[s] = len(e.strings)
	if err := e.w.WriteU29(uint32(len(s))<<1 | 0x01); err != nil {
		return err
	}
	return e.w.WriteUTFBytes(s)
}

// writeInline writes the U29 header of an inline value of length n.
func (e *encodeState) writeInline(n int) error {
	if n > encio.MaxInt29 {
		return encio.NewError(encio.ErrFormat, fmt.Sprintf("length %v is too long", n), 1)
	}
	return e.w.WriteU29(uint32(n)<<1 | 0x01)
}

// writeMarker3 writes marker and then either a reference to key or nothing,
// returning true if a reference was written.
func (e *encodeState) writeMarker3(marker byte, key any) (bool, error) {
	if err := e.w.WriteByte(marker); err != nil {
		return true, err
	}
	return e.amf3Reference(key)
}

func writeUndefined3(e *encodeState, v reflect.Value) error {
	return e.w.WriteByte(amf3Undefined)
}

func writeBool3(e *encodeState, v reflect.Value) error {
	if v.Bool() {
		return e.w.WriteByte(amf3True)
	}
	return e.w.WriteByte(amf3False)
}

func (e *encodeState) writeInteger3(n int64) error {
	if n < encio.MinInt29 || n > encio.MaxInt29 {
		return e.writeDouble3(float64(n))
	}
	if err := e.w.WriteByte(amf3Integer); err != nil {
		return err
	}
	return e.w.WriteU29(uint32(n))
}

func (e *encodeState) writeDouble3(f float64) error {
	if err := e.w.WriteByte(amf3Double); err != nil {
		return err
	}
	return e.w.WriteFloat64(f)
}

func writeInt3(e *encodeState, v reflect.Value) error {
	return e.writeInteger3(v.Int())
}

func writeUint3(e *encodeState, v reflect.Value) error {
	n := v.Uint()
	if n > encio.MaxInt29 {
		return e.writeDouble3(float64(n))
	}
	return e.writeInteger3(int64(n))
}

func writeDouble3(e *encodeState, v reflect.Value) error {
	return e.writeDouble3(v.Float())
}

func writeString3(e *encodeState, v reflect.Value) error {
	if err := e.w.WriteByte(amf3String); err != nil {
		return err
	}
	return e.writeAMF3String(v.String())
}

// writeDate3 writes a date. AMF3 dates are referenced by their instant.
func writeDate3(e *encodeState, v reflect.Value) error {
	ms, _ := e.config.dateToWire(v.Interface().(time.Time))
	if ref, err := e.writeMarker3(amf3Date, dateKey(ms)); ref || err != nil {
		return err
	}
	if err := e.w.WriteU29(0x01); err != nil {
		return err
	}
	return e.w.WriteFloat64(ms)
}

func (e *encodeState) writeXML3(marker byte, text string) error {
	key := xmlKey{legacy: marker == amf3XMLDocument, text: text}
	if ref, err := e.writeMarker3(marker, key); ref || err != nil {
		return err
	}
	if err := e.writeInline(len(text)); err != nil {
		return err
	}
	return e.w.WriteUTFBytes(text)
}

func writeXMLDocument3(e *encodeState, v reflect.Value) error {
	return e.writeXML3(amf3XMLDocument, v.String())
}

func writeXML3(e *encodeState, v reflect.Value) error {
	return e.writeXML3(amf3XML, v.String())
}

func (e *encodeState) writeByteArray3(b []byte, key any) error {
	if ref, err := e.writeMarker3(amf3ByteArray, key); ref || err != nil {
		return err
	}
	if err := e.writeInline(len(b)); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

// writeBytes3 writes byte slices as byte arrays.
func writeBytes3(e *encodeState, v reflect.Value) error {
	return e.writeByteArray3(v.Bytes(), identity(v))
}

func writeByteArray3(e *encodeState, v reflect.Value) error {
	b, key := pointerTo[ByteArray](v)
	return e.writeByteArray3(b.Bytes(), key)
}

// writeArray3 writes slices and arrays as dense arrays.
func writeArray3(e *encodeState, v reflect.Value) error {
	if ref, err := e.writeMarker3(amf3Array, identity(v)); ref || err != nil {
		return err
	}

	n := v.Len()
	if err := e.writeInline(n); err != nil {
		return err
	}
	// no associative part
	if err := e.w.WriteU29(0x01); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.writeAMF3(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// writeMember3 writes one name-value pair of an associative array or dynamic object.
func (e *encodeState) writeMember3(name string, v reflect.Value) error {
	if name == "" {
		return encio.NewError(encio.ErrFormat, "empty member name", 1)
	}
	if err := e.writeAMF3String(name); err != nil {
		return err
	}
	return e.writeAMF3(v)
}

// writeECMAArray3 writes ECMA arrays and Go maps as arrays with only an associative part.
func writeECMAArray3(e *encodeState, v reflect.Value) error {
	entries, key := ecmaEntries(v)
	if ref, err := e.writeMarker3(amf3Array, key); ref || err != nil {
		return err
	}

	// no dense part
	if err := e.w.WriteU29(0x01); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := e.writeMember3(entry.key, entry.value); err != nil {
			return err
		}
	}
	return e.w.WriteU29(0x01)
}

// writeTyped3 writes anything with a TypeAdapter as an AMF3 object.
func writeTyped3(e *encodeState, v reflect.Value) error {
	a := e.reg.AdapterFor(v.Type())
	if a == nil {
		return encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("cannot write %v as an object", v.Type()), 0)
	}

	iv := v.Interface()
	def, err := a.ClassDefinition(iv)
	if err != nil {
		return err
	}

	var key any
	if v.Kind() == reflect.Pointer {
		key = identity(v)
	}
	if ref, err := e.writeMarker3(amf3Object, key); ref || err != nil {
		return err
	}

	ref, err := e.amf3Trait(def)
	if err != nil {
		return err
	}
	if !ref {
		if err := e.w.WriteU29(def.header()); err != nil {
			return err
		}
		if err := e.writeAMF3String(def.ClassName); err != nil {
			return err
		}
		for _, member := range def.Members {
			if err := e.writeAMF3String(member); err != nil {
				return err
			}
		}
	}

	if def.Externalizable {
		ext, ok := asExternalizable(v)
		if !ok {
			return encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("%v is externalizable, but %v does not implement Externalizable", def.ClassName, v.Type()), 0)
		}
		return ext.WriteExternal(dataOutput{e: e})
	}

	for _, member := range def.Members {
		val, err := a.Get(iv, member)
		if err != nil {
			return err
		}
		if err := e.writeAMF3(reflect.ValueOf(val)); err != nil {
			return err
		}
	}

	if !def.Dynamic {
		return nil
	}
	if da, ok := a.(DynamicAdapter); ok {
		for _, member := range da.DynamicMembers(iv) {
			val, err := a.Get(iv, member)
			if err != nil {
				return err
			}
			if err := e.writeMember3(member, reflect.ValueOf(val)); err != nil {
				return err
			}
		}
	}
	return e.w.WriteU29(0x01)
}

// asExternalizable returns v as an Externalizable, which is implemented on the pointer.
func asExternalizable(v reflect.Value) (Externalizable, bool) {
	if v.Kind() != reflect.Pointer {
		if v.CanAddr() {
			v = v.Addr()
		} else {
			p := reflect.New(v.Type())
			p.Elem().Set(v)
			v = p
		}
	}
	ext, ok := v.Interface().(Externalizable)
	return ext, ok
}

func (e *encodeState) writeVectorHeader(marker byte, key any, n int, fixed bool) (bool, error) {
	if ref, err := e.writeMarker3(marker, key); ref || err != nil {
		return true, err
	}
	if err := e.writeInline(n); err != nil {
		return true, err
	}
	return false, e.w.WriteBool(fixed)
}

func writeIntVector3(e *encodeState, v reflect.Value) error {
	vec, key := pointerTo[IntVector](v)
	if ref, err := e.writeVectorHeader(amf3IntVector, key, len(vec.Items), vec.Fixed); ref || err != nil {
		return err
	}
	for _, n := range vec.Items {
		if err := e.w.WriteInt32(n); err != nil {
			return err
		}
	}
	return nil
}

func writeUintVector3(e *encodeState, v reflect.Value) error {
	vec, key := pointerTo[UintVector](v)
	if ref, err := e.writeVectorHeader(amf3UintVector, key, len(vec.Items), vec.Fixed); ref || err != nil {
		return err
	}
	for _, n := range vec.Items {
		if err := e.w.WriteUint32(n); err != nil {
			return err
		}
	}
	return nil
}

func writeDoubleVector3(e *encodeState, v reflect.Value) error {
	vec, key := pointerTo[DoubleVector](v)
	if ref, err := e.writeVectorHeader(amf3DoubleVector, key, len(vec.Items), vec.Fixed); ref || err != nil {
		return err
	}
	for _, f := range vec.Items {
		if err := e.w.WriteFloat64(f); err != nil {
			return err
		}
	}
	return nil
}

func writeObjectVector3(e *encodeState, v reflect.Value) error {
	vec, key := pointerTo[ObjectVector](v)
	if ref, err := e.writeVectorHeader(amf3ObjectVector, key, len(vec.Items), vec.Fixed); ref || err != nil {
		return err
	}
	if err := e.writeAMF3String(vec.TypeName); err != nil {
		return err
	}
	for _, item := range vec.Items {
		if err := e.writeAMF3(reflect.ValueOf(item)); err != nil {
			return err
		}
	}
	return nil
}

func writeElem3(e *encodeState, v reflect.Value) error {
	return e.writeAMF3(v.Elem())
}
