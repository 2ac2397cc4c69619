// Package encio provides the primitive codec of the Action Message Format;
// big-endian fixed width numbers, UTF-8 strings, the AMF3 U29 integer, as well as error types.
package encio

import (
	"errors"
	"fmt"
	"io"
)

// TooBig bounds lengths and counts read off the wire. Anything larger is ErrFormat.
// It is 32MB on 32bit platforms and 128MB on 64bit platforms.
//
// Decoders never allocate a whole declared length up front; memory grows with the data actually read.
var TooBig = uintptr(1 << (25 + ((^uint(0) >> 32) & 2)))

// readFull fills buff from r.
// Running out of data part way is io.ErrUnexpectedEOF, as is an empty reader.
func readFull(r io.Reader, buff []byte) error {
	n, err := io.ReadFull(r, buff)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return NewIOError(io.ErrUnexpectedEOF, fmt.Sprintf("read %v of %v bytes", n, len(buff)))
	default:
		return NewIOError(err, fmt.Sprintf("read %v of %v bytes", n, len(buff)))
	}
}

// writeFull writes all of buff to w.
// Writers that report a short write without an error are retried until they stop making progress.
func writeFull(w io.Writer, buff []byte) error {
	written := 0
	for written < len(buff) {
		n, err := w.Write(buff[written:])
		if n < 0 || n > len(buff)-written {
			return NewIOError(errors.New("bad io.Writer implementation"), fmt.Sprintf("%T reported %v bytes written of %v", w, n, len(buff)-written))
		}
		written += n
		switch {
		case err != nil:
			return NewIOError(err, fmt.Sprintf("wrote %v of %v bytes", written, len(buff)))
		case n == 0:
			return NewIOError(io.ErrShortWrite, fmt.Sprintf("wrote %v of %v bytes", written, len(buff)))
		case written < len(buff):
			NewLogger().Warn("encio: short write without error, retrying",
				"writer", fmt.Sprintf("%T", w),
				"written", written,
				"want", len(buff),
			)
		}
	}
	return nil
}
