package encio_test

import (
	"io"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf/encio"
)

func TestBuffer(t *testing.T) {
	var b encio.Buffer
	n, err := b.Write([]byte{1, 2, 3})
	td.CmpNoError(t, err)
	td.Cmp(t, n, 3)
	td.CmpNoError(t, b.WriteByte(4))

	td.Cmp(t, b.Len(), 4)
	td.Cmp(t, b.Size(), 4)

	by, err := b.ReadByte()
	td.CmpNoError(t, err)
	td.Cmp(t, by, byte(1))
	td.Cmp(t, b.Position(), 1)
	td.Cmp(t, b.Len(), 3)

	// read data is kept
	td.Cmp(t, b.Bytes(), []byte{1, 2, 3, 4})

	td.CmpNoError(t, b.SetPosition(3))
	rest := make([]byte, 2)
	n, err = b.Read(rest)
	td.CmpNoError(t, err)
	td.Cmp(t, n, 1)

	_, err = b.Read(rest)
	td.Cmp(t, err, io.EOF)

	td.CmpError(t, b.SetPosition(5))

	b.Reset()
	td.Cmp(t, b.Size(), 0)
	td.Cmp(t, b.Position(), 0)
}

func TestBufferGrow(t *testing.T) {
	b := encio.NewBuffer(make([]byte, 0, 1))
	for i := 0; i < 100; i++ {
		td.CmpNoError(t, b.WriteByte(byte(i)))
	}
	td.Cmp(t, b.Size(), 100)
	td.Cmp(t, b.Bytes()[99], byte(99))
}
