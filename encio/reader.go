package encio

import (
	"fmt"
	"io"
	"slices"
	"unicode/utf8"
)

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	br, _ := r.(io.ByteReader)
	return &Reader{
		r:  r,
		br: br,
	}
}

// Reader reads AMF primitives from an io.Reader, keeping count of the bytes consumed.
type Reader struct {
	r    io.Reader
	br   io.ByteReader
	buff [8]byte
	off  int64
}

// Offset returns the number of bytes read so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Read implements io.Reader.
func (r *Reader) Read(buff []byte) (int, error) {
	n, err := r.r.Read(buff)
	r.off += int64(n)
	return n, err
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.br != nil {
		b, err := r.br.ReadByte()
		if err != nil {
			return 0, r.eof(err)
		}
		r.off++
		return b, nil
	}

	if err := r.fill(1); err != nil {
		return 0, err
	}
	return r.buff[0], nil
}

func (r *Reader) eof(err error) error {
	if err == io.EOF {
		return NewIOError(io.ErrUnexpectedEOF, fmt.Sprintf("at offset %v", r.off))
	}
	return NewIOError(err, "")
}

func (r *Reader) fill(n int) error {
	if err := readFull(r.r, r.buff[:n]); err != nil {
		return err
	}
	r.off += int64(n)
	return nil
}

// ReadBool reads a single byte, returning true if it is not zero.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.fill(2); err != nil {
		return 0, err
	}
	return DecodeUint16(r.buff[:]), nil
}

// ReadInt16 reads a big-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	n, err := r.ReadUint16()
	return int16(n), err
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.fill(4); err != nil {
		return 0, err
	}
	return DecodeUint32(r.buff[:]), nil
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	n, err := r.ReadUint32()
	return int32(n), err
}

// ReadFloat32 reads a big-endian IEEE 754 float32.
func (r *Reader) ReadFloat32() (float32, error) {
	if err := r.fill(4); err != nil {
		return 0, err
	}
	return DecodeFloat32(r.buff[:]), nil
}

// ReadFloat64 reads a big-endian IEEE 754 float64.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.fill(8); err != nil {
		return 0, err
	}
	return DecodeFloat64(r.buff[:]), nil
}

// readChunk is the most ReadBytes allocates ahead of the data it has read.
const readChunk = 64 << 10

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n uint32) ([]byte, error) {
	if uintptr(n) > TooBig {
		return nil, NewError(ErrFormat, fmt.Sprintf("%v bytes is too big to read", n), 0)
	}

	buff := make([]byte, 0, min(n, readChunk))
	for len(buff) < int(n) {
		start := len(buff)
		end := start + min(int(n)-start, readChunk)
		buff = slices.Grow(buff, end-start)[:end]
		if err := readFull(r.r, buff[start:]); err != nil {
			return nil, err
		}
		r.off += int64(end - start)
	}
	return buff, nil
}

// ReadUTFBytes reads n bytes of UTF-8 text.
func (r *Reader) ReadUTFBytes(n uint32) (string, error) {
	if n == 0 {
		return "", nil
	}

	buff, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buff) {
		return "", NewError(ErrFormat, fmt.Sprintf("invalid UTF-8 string ending at offset %v", r.off), 0)
	}
	return string(buff), nil
}

// ReadUTF reads a string with a uint16 byte-length prefix.
func (r *Reader) ReadUTF() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	return r.ReadUTFBytes(uint32(n))
}

// ReadLongUTF reads a string with a uint32 byte-length prefix.
func (r *Reader) ReadLongUTF() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	return r.ReadUTFBytes(n)
}

// ReadU29 reads an unsigned AMF3 U29.
func (r *Reader) ReadU29() (uint32, error) {
	var n uint32
	for i := 0; i < 3; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b&0x80 == 0 {
			return n<<7 | uint32(b), nil
		}
		n = n<<7 | uint32(b&0x7f)
	}

	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return n<<8 | uint32(b), nil
}

// ReadInt29 reads a signed AMF3 integer.
func (r *Reader) ReadInt29() (int32, error) {
	u, err := r.ReadU29()
	return SignExtend29(u), err
}
