package amf

import (
	"reflect"

	"github.com/stewi1014/amf/encio"
)

// NewByteArray returns a ByteArray holding b, positioned at its start.
// The ByteArray takes ownership of b.
func NewByteArray(b []byte) *ByteArray {
	return &ByteArray{buf: *encio.NewBuffer(b)}
}

// ByteArray is an ActionScript flash.utils.ByteArray.
// It is both a DataInput and a DataOutput; reads start at Position and writes append to the end.
//
// Objects read and written with ReadObject and WriteObject use DefaultRegistry, and their own reference tables.
type ByteArray struct {
	buf encio.Buffer
}

// Bytes returns the whole content, read or not.
func (b *ByteArray) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the length of the content.
func (b *ByteArray) Len() int {
	return b.buf.Size()
}

// Available returns the number of bytes from Position to the end.
func (b *ByteArray) Available() int {
	return b.buf.Len()
}

// Position returns the read position.
func (b *ByteArray) Position() int {
	return b.buf.Position()
}

// SetPosition moves the read position.
func (b *ByteArray) SetPosition(pos int) error {
	return b.buf.SetPosition(pos)
}

// Reset empties the ByteArray.
func (b *ByteArray) Reset() {
	b.buf.Reset()
}

func (b *ByteArray) reader() *encio.Reader { return encio.NewReader(&b.buf) }
func (b *ByteArray) writer() *encio.Writer { return encio.NewWriter(&b.buf) }

// ReadBoolean implements DataInput.
func (b *ByteArray) ReadBoolean() (bool, error) { return b.reader().ReadBool() }

// ReadByte implements DataInput.
func (b *ByteArray) ReadByte() (byte, error) { return b.buf.ReadByte() }

// ReadShort implements DataInput.
func (b *ByteArray) ReadShort() (int16, error) { return b.reader().ReadInt16() }

// ReadUnsignedShort implements DataInput.
func (b *ByteArray) ReadUnsignedShort() (uint16, error) { return b.reader().ReadUint16() }

// ReadInt implements DataInput.
func (b *ByteArray) ReadInt() (int32, error) { return b.reader().ReadInt32() }

// ReadUnsignedInt implements DataInput.
func (b *ByteArray) ReadUnsignedInt() (uint32, error) { return b.reader().ReadUint32() }

// ReadFloat implements DataInput.
func (b *ByteArray) ReadFloat() (float32, error) { return b.reader().ReadFloat32() }

// ReadDouble implements DataInput.
func (b *ByteArray) ReadDouble() (float64, error) { return b.reader().ReadFloat64() }

// ReadUTF implements DataInput.
func (b *ByteArray) ReadUTF() (string, error) { return b.reader().ReadUTF() }

// ReadUTFBytes implements DataInput.
func (b *ByteArray) ReadUTFBytes(n uint32) (string, error) { return b.reader().ReadUTFBytes(n) }

// ReadBytes implements DataInput.
func (b *ByteArray) ReadBytes(n uint32) ([]byte, error) { return b.reader().ReadBytes(n) }

// ReadObject implements DataInput.
func (b *ByteArray) ReadObject() (any, error) {
	return newDecodeState(&b.buf, (*Config)(nil).copyAndFill()).readAMF3()
}

// WriteBoolean implements DataOutput.
func (b *ByteArray) WriteBoolean(v bool) error { return b.writer().WriteBool(v) }

// WriteByte implements DataOutput.
func (b *ByteArray) WriteByte(v byte) error { return b.buf.WriteByte(v) }

// WriteShort implements DataOutput.
func (b *ByteArray) WriteShort(n int16) error { return b.writer().WriteInt16(n) }

// WriteUnsignedShort implements DataOutput.
func (b *ByteArray) WriteUnsignedShort(n uint16) error { return b.writer().WriteUint16(n) }

// WriteInt implements DataOutput.
func (b *ByteArray) WriteInt(n int32) error { return b.writer().WriteInt32(n) }

// WriteUnsignedInt implements DataOutput.
func (b *ByteArray) WriteUnsignedInt(n uint32) error { return b.writer().WriteUint32(n) }

// WriteFloat implements DataOutput.
func (b *ByteArray) WriteFloat(f float32) error { return b.writer().WriteFloat32(f) }

// WriteDouble implements DataOutput.
func (b *ByteArray) WriteDouble(f float64) error { return b.writer().WriteFloat64(f) }

// WriteUTF implements DataOutput.
func (b *ByteArray) WriteUTF(s string) error { return b.writer().WriteUTF(s) }

// WriteUTFBytes implements DataOutput.
func (b *ByteArray) WriteUTFBytes(s string) error { return b.writer().WriteUTFBytes(s) }

// WriteBytes implements DataOutput.
func (b *ByteArray) WriteBytes(p []byte) error {
	_, err := b.buf.Write(p)
	return err
}

// WriteObject implements DataOutput.
func (b *ByteArray) WriteObject(v any) error {
	return newEncodeState(&b.buf, (*Config)(nil).copyAndFill()).writeAMF3(reflect.ValueOf(v))
}
