package amf

import (
	"bufio"
	"io"
	"sync"
)

// NewDecoder returns a new Decoder reading from r.
// If config is nil, the defaults are used.
// Readers that aren't an io.ByteReader are buffered, so the Decoder may read past the end of a message.
func NewDecoder(r io.Reader, config *Config) *Decoder {
	config = config.copyAndFill()
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	return &Decoder{
		config: config,
		state:  newDecodeState(r, config),
	}
}

// Decoder reads AMF messages and values from an io.Reader.
// It is safe for concurrent use; calls are serialised.
//
// Decoded values have a small set of types:
//
//	AMF null                    nil
//	undefined                   Undefined
//	boolean                     bool
//	AMF0 number, AMF3 double    float64
//	AMF3 integer                int32
//	string                      string
//	date                        time.Time
//	XML                         XMLDocument or XML
//	byte array                  *ByteArray
//	dense array                 []any
//	associative array           *ECMAArray
//	anonymous or unknown object *Object
//	registered class            a pointer to the registered type
//	vectors                     *IntVector, *UintVector, *DoubleVector, *ObjectVector
//
// Values read more than once through references are the same Go value.
type Decoder struct {
	mutex  sync.Mutex
	config *Config
	state  *decodeState
}

// Decode reads a message.
// Failures reading the message structure are returned as a *MessageError.
// If Config.FaultTolerant is set, members that can't be applied to their object are skipped,
// and the body they were in has its Err set.
func (d *Decoder) Decode() (*Message, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	s := d.state
	version, err := s.r.ReadUint16()
	if err != nil {
		return nil, &MessageError{Section: SectionVersion, Offset: s.r.Offset(), Err: err}
	}
	m := &Message{Version: version}

	count, err := s.r.ReadUint16()
	if err != nil {
		return nil, &MessageError{Section: SectionHeader, Offset: s.r.Offset(), Err: err}
	}
	m.Headers = make([]*Header, 0, count)
	for i := 0; i < int(count); i++ {
		h, err := d.decodeHeader()
		if err != nil {
			return nil, &MessageError{
				Section: SectionHeader,
				Index:   i,
				Name:    h.Name,
				Class:   s.class,
				Offset:  s.r.Offset(),
				Err:     err,
			}
		}
		m.Headers = append(m.Headers, h)
	}

	count, err = s.r.ReadUint16()
	if err != nil {
		return nil, &MessageError{Section: SectionBody, Offset: s.r.Offset(), Err: err}
	}
	m.Bodies = make([]*Body, 0, count)
	for i := 0; i < int(count); i++ {
		b, err := d.decodeBody()
		if err != nil {
			return nil, &MessageError{
				Section:  SectionBody,
				Index:    i,
				Name:     b.Target,
				Response: b.Response,
				Class:    s.class,
				Offset:   s.r.Offset(),
				Err:      err,
			}
		}
		m.Bodies = append(m.Bodies, b)
	}

	return m, nil
}

// decodeHeader reads a header. The returned header is never nil, so what was read of it can be reported on error.
func (d *Decoder) decodeHeader() (h *Header, err error) {
	s := d.state
	s.reset()
	h = new(Header)

	if h.Name, err = s.r.ReadUTF(); err != nil {
		return
	}
	if h.MustUnderstand, err = s.r.ReadBool(); err != nil {
		return
	}
	// length, which may be -1
	if _, err = s.r.ReadInt32(); err != nil {
		return
	}
	h.Content, err = s.readAMF0()
	return
}

// decodeBody reads a body. The returned body is never nil, so what was read of it can be reported on error.
func (d *Decoder) decodeBody() (b *Body, err error) {
	s := d.state
	s.reset()
	b = new(Body)

	if b.Target, err = s.r.ReadUTF(); err != nil {
		return
	}
	if b.Response, err = s.r.ReadUTF(); err != nil {
		return
	}
	if _, err = s.r.ReadInt32(); err != nil {
		return
	}

	failures := s.failures
	if b.Content, err = s.readAMF0(); err != nil {
		return
	}
	if s.failures != failures {
		b.Err = s.lastErr
	}
	return
}

// DecodeValue reads a single value in Config.ObjectEncoding with fresh reference tables.
func (d *Decoder) DecodeValue() (any, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	s := d.state
	s.reset()
	if d.config.ObjectEncoding == AMF3 {
		return s.readAMF3()
	}
	return s.readAMF0()
}

// LastError returns the last member bind failure skipped because of Config.FaultTolerant.
func (d *Decoder) LastError() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.state.lastErr
}
