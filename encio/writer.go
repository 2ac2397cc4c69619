package encio

import (
	"fmt"
	"io"
)

// NewWriter returns a new Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: w,
	}
}

// Writer writes AMF primitives to an io.Writer, keeping count of the bytes written.
type Writer struct {
	w    io.Writer
	buff [8]byte
	off  int64
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.off
}

// Write implements io.Writer.
func (w *Writer) Write(buff []byte) (int, error) {
	if err := writeFull(w.w, buff); err != nil {
		return 0, err
	}
	w.off += int64(len(buff))
	return len(buff), nil
}

func (w *Writer) flush(n int) error {
	if err := writeFull(w.w, w.buff[:n]); err != nil {
		return err
	}
	w.off += int64(n)
	return nil
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	w.buff[0] = b
	return w.flush(1)
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(b bool) error {
	if b {
		return w.WriteByte(1)
	}
	return w.WriteByte(0)
}

// WriteUint16 writes a big-endian uint16.
func (w *Writer) WriteUint16(n uint16) error {
	EncodeUint16(w.buff[:], n)
	return w.flush(2)
}

// WriteInt16 writes a big-endian int16.
func (w *Writer) WriteInt16(n int16) error {
	return w.WriteUint16(uint16(n))
}

// WriteUint32 writes a big-endian uint32.
func (w *Writer) WriteUint32(n uint32) error {
	EncodeUint32(w.buff[:], n)
	return w.flush(4)
}

// WriteInt32 writes a big-endian int32.
func (w *Writer) WriteInt32(n int32) error {
	return w.WriteUint32(uint32(n))
}

// WriteFloat32 writes a big-endian IEEE 754 float32.
func (w *Writer) WriteFloat32(f float32) error {
	EncodeFloat32(w.buff[:], f)
	return w.flush(4)
}

// WriteFloat64 writes a big-endian IEEE 754 float64.
func (w *Writer) WriteFloat64(f float64) error {
	EncodeFloat64(w.buff[:], f)
	return w.flush(8)
}

// WriteU29 writes the low 29 bits of n as an AMF3 U29.
func (w *Writer) WriteU29(n uint32) error {
	return w.flush(EncodeU29(w.buff[:], n))
}

// WriteUTFBytes writes the bytes of s with no length prefix.
func (w *Writer) WriteUTFBytes(s string) error {
	if len(s) == 0 {
		return nil
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteUTF writes s with a uint16 byte-length prefix.
func (w *Writer) WriteUTF(s string) error {
	if len(s) > 0xffff {
		return NewError(ErrFormat, fmt.Sprintf("string of %v bytes is too long for a short string", len(s)), 0)
	}
	if err := w.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	return w.WriteUTFBytes(s)
}

// WriteLongUTF writes s with a uint32 byte-length prefix.
func (w *Writer) WriteLongUTF(s string) error {
	if uint64(len(s)) > 0xffffffff {
		return NewError(ErrFormat, fmt.Sprintf("string of %v bytes is too long for a long string", len(s)), 0)
	}
	if err := w.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	return w.WriteUTFBytes(s)
}
