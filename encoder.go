package amf

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/stewi1014/amf/encio"
)

// NewEncoder returns a new Encoder writing to w.
// If config is nil, the defaults are used.
func NewEncoder(w io.Writer, config *Config) *Encoder {
	config = config.copyAndFill()
	bw := bufio.NewWriter(w)
	return &Encoder{
		out:    w,
		w:      bw,
		config: config,
		state:  newEncodeState(bw, config),
	}
}

// Encoder writes AMF messages and values to an io.Writer.
// It is safe for concurrent use; calls are serialised.
// Output is buffered and flushed at the end of each call; if a call fails, the output may hold part of its message.
type Encoder struct {
	out    io.Writer
	w      *bufio.Writer
	mutex  sync.Mutex
	config *Config
	state  *encodeState
}

// Encode writes m.
// Headers are written in AMF0, and bodies in the encoding given by m.Version.
// Reference tables are reset before every header and body.
func (e *Encoder) Encode(m *Message) error {
	if m == nil {
		return encio.NewError(encio.ErrNilPointer, "cannot encode nil *Message", 0)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := e.encode(m); err != nil {
		// Drop what's buffered of the failed message; anything already flushed is lost.
		e.w.Reset(e.out)
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) encode(m *Message) error {
	s := e.state
	if len(m.Headers) > 0xffff || len(m.Bodies) > 0xffff {
		return &MessageError{
			Section: SectionVersion,
			Err:     encio.NewError(encio.ErrFormat, fmt.Sprintf("%v headers and %v bodies is too many", len(m.Headers), len(m.Bodies)), 0),
		}
	}

	if err := s.w.WriteUint16(m.Version); err != nil {
		return &MessageError{Section: SectionVersion, Offset: s.w.Offset(), Err: err}
	}

	if err := s.w.WriteUint16(uint16(len(m.Headers))); err != nil {
		return &MessageError{Section: SectionHeader, Offset: s.w.Offset(), Err: err}
	}
	for i, h := range m.Headers {
		if err := e.encodeHeader(h); err != nil {
			merr := &MessageError{Section: SectionHeader, Index: i, Offset: s.w.Offset(), Err: err}
			if h != nil {
				merr.Name = h.Name
			}
			return merr
		}
	}

	if err := s.w.WriteUint16(uint16(len(m.Bodies))); err != nil {
		return &MessageError{Section: SectionBody, Offset: s.w.Offset(), Err: err}
	}
	encoding := m.ObjectEncoding()
	for i, b := range m.Bodies {
		if err := e.encodeBody(b, encoding); err != nil {
			merr := &MessageError{Section: SectionBody, Index: i, Offset: s.w.Offset(), Err: err}
			if b != nil {
				merr.Name = b.Target
				merr.Response = b.Response
			}
			return merr
		}
	}

	return nil
}

func (e *Encoder) encodeHeader(h *Header) error {
	if h == nil {
		return encio.NewError(encio.ErrNilPointer, "nil *Header", 0)
	}

	s := e.state
	s.reset()
	s.encoding = AMF0

	if err := s.w.WriteUTF(h.Name); err != nil {
		return err
	}
	if err := s.w.WriteBool(h.MustUnderstand); err != nil {
		return err
	}
	// length is unknown
	if err := s.w.WriteInt32(-1); err != nil {
		return err
	}
	return s.writeAMF0(reflect.ValueOf(h.Content))
}

func (e *Encoder) encodeBody(b *Body, encoding ObjectEncoding) error {
	if b == nil {
		return encio.NewError(encio.ErrNilPointer, "nil *Body", 0)
	}

	s := e.state
	s.reset()
	s.encoding = encoding

	if err := s.w.WriteUTF(b.Target); err != nil {
		return err
	}
	if err := s.w.WriteUTF(b.Response); err != nil {
		return err
	}
	if err := s.w.WriteInt32(-1); err != nil {
		return err
	}
	return s.writeAMF0(reflect.ValueOf(b.Content))
}

// EncodeValue writes v in Config.ObjectEncoding with fresh reference tables.
func (e *Encoder) EncodeValue(v any) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	s := e.state
	s.reset()
	s.encoding = e.config.ObjectEncoding

	var err error
	if s.encoding == AMF3 {
		err = s.writeAMF3(reflect.ValueOf(v))
	} else {
		err = s.writeAMF0(reflect.ValueOf(v))
	}
	if err != nil {
		e.w.Reset(e.out)
		return err
	}
	return e.w.Flush()
}
