package encio

import (
	"fmt"
	"io"
)

// NewBuffer returns a Buffer holding buff, positioned at its start.
func NewBuffer(buff []byte) *Buffer {
	return &Buffer{buff: buff}
}

// Buffer is a buffer for data. It operates similar to bytes.Buffer,
// but read data is kept and the read position can be moved, as an ActionScript ByteArray needs.
type Buffer struct {
	buff []byte
	off  int
}

// Read implements io.Reader
func (b *Buffer) Read(buff []byte) (int, error) {
	if len(buff) > 0 && b.Len() == 0 {
		return 0, io.EOF
	}
	n := copy(buff, b.buff[b.off:])
	b.off += n
	return n, nil
}

// ReadByte implements io.ByteReader
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() == 0 {
		return 0, io.EOF
	}
	by := b.buff[b.off]
	b.off++
	return by, nil
}

// Write implements io.Writer. Data is always appended to the end of the buffer.
func (b *Buffer) Write(buff []byte) (int, error) {
	return copy(b.buff[b.grow(len(buff)):], buff), nil
}

// WriteByte implements io.ByteWriter
func (b *Buffer) WriteByte(by byte) error {
	b.buff[b.grow(1)] = by
	return nil
}

// Len returns the length of the unread portion of the buffer
func (b *Buffer) Len() int {
	return len(b.buff) - b.off
}

// Size returns the length of the whole buffer, read or not.
func (b *Buffer) Size() int {
	return len(b.buff)
}

// Bytes returns the whole buffer. It aliases the buffer's memory until the next write.
func (b *Buffer) Bytes() []byte {
	return b.buff
}

// Position returns the read position.
func (b *Buffer) Position() int {
	return b.off
}

// SetPosition moves the read position.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 || pos > len(b.buff) {
		return NewError(ErrBadType, fmt.Sprintf("position %v is outside of buffer with length %v", pos, len(b.buff)), 0)
	}
	b.off = pos
	return nil
}

// Reset empties the buffer, keeping allocated memory.
func (b *Buffer) Reset() {
	b.buff = b.buff[:0]
	b.off = 0
}

func (b *Buffer) grow(n int) int {
	l := len(b.buff)
	if l+n <= cap(b.buff) {
		b.buff = b.buff[:l+n]
		return l
	}

	// must allocate
	nb := make([]byte, l+n, cap(b.buff)*2+n)
	copy(nb, b.buff)
	b.buff = nb
	return l
}
