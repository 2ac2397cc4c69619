package amf

import (
	"strings"
)

// Message is an AMF packet; a version, headers and bodies.
type Message struct {
	// Version is the object encoding of the bodies; 3 for AMF3, otherwise AMF0.
	Version uint16
	Headers []*Header
	Bodies  []*Body
}

// NewMessage returns an empty Message whose bodies are written with encoding.
func NewMessage(encoding ObjectEncoding) *Message {
	return &Message{Version: uint16(encoding)}
}

// ObjectEncoding returns the encoding of the message's bodies.
// Headers are always AMF0.
func (m *Message) ObjectEncoding() ObjectEncoding {
	if m.Version == uint16(AMF3) {
		return AMF3
	}
	return AMF0
}

// AddHeader appends a header.
func (m *Message) AddHeader(name string, mustUnderstand bool, content any) *Header {
	h := &Header{
		Name:           name,
		MustUnderstand: mustUnderstand,
		Content:        content,
	}
	m.Headers = append(m.Headers, h)
	return h
}

// AddBody appends a body.
func (m *Message) AddBody(target, response string, content any) *Body {
	b := &Body{
		Target:   target,
		Response: response,
		Content:  content,
	}
	m.Bodies = append(m.Bodies, b)
	return b
}

// Header returns the first header called name.
func (m *Message) Header(name string) (*Header, bool) {
	for _, h := range m.Headers {
		if h.Name == name {
			return h, true
		}
	}
	return nil, false
}

// Header is a message header, which is always AMF0.
type Header struct {
	Name           string
	MustUnderstand bool
	Content        any
}

// Response suffixes and targets.
const (
	// Recordset prefixes the targets of paged recordset requests, which look like "rs://args/Type.Method.page".
	Recordset = "rs://"

	OnResult      = "/onResult"
	OnStatus      = "/onStatus"
	OnDebugEvents = "/onDebugEvents"

	// emptyTarget is the target of bodies with nothing to call.
	emptyTarget = "null"

	describeService = "describeService"
)

// Body is a message body; a call or its result.
type Body struct {
	// Target is the call target, "Type.Method", or a response like "/1/onResult".
	Target string

	// Response is the target the result is sent to, or "null".
	Response string

	Content any

	// Err holds the last member bind failure while decoding Content, if decoding was fault tolerant.
	Err error
}

// IsEmptyTarget reports whether the body has nothing to call.
func (b *Body) IsEmptyTarget() bool {
	return b.Target == "" || b.Target == emptyTarget
}

// IsRecordsetDelivery reports whether the body requests a page of a recordset.
func (b *Body) IsRecordsetDelivery() bool {
	return strings.HasPrefix(b.Target, Recordset)
}

// RecordsetArgs returns the arguments of a recordset target; everything between the prefix and the next slash.
func (b *Body) RecordsetArgs() string {
	if !b.IsRecordsetDelivery() {
		return ""
	}
	args, _, _ := strings.Cut(b.Target[len(Recordset):], "/")
	return args
}

// call returns the dotted call of the target.
// Recordset targets lose their prefix, arguments and page suffix.
func (b *Body) call() string {
	if b.IsEmptyTarget() {
		return ""
	}
	if !b.IsRecordsetDelivery() {
		return b.Target
	}

	_, target, _ := strings.Cut(b.Target[len(Recordset):], "/")
	if i := strings.LastIndexByte(target, '.'); i >= 0 {
		target = target[:i]
	}
	return target
}

// TypeName returns the service name of the target; everything before the last dot.
func (b *Body) TypeName() string {
	call := b.call()
	if i := strings.LastIndexByte(call, '.'); i >= 0 {
		return call[:i]
	}
	return ""
}

// Method returns the method name of the target; everything after the last dot.
func (b *Body) Method() string {
	call := b.call()
	if i := strings.LastIndexByte(call, '.'); i >= 0 {
		return call[i+1:]
	}
	return ""
}

// Call returns "TypeName.Method".
func (b *Body) Call() string {
	return b.TypeName() + "." + b.Method()
}

// IsDebug reports whether the body carries debug events.
func (b *Body) IsDebug() bool {
	return strings.HasSuffix(b.Target, OnDebugEvents)
}

// IsDescribeService reports whether the body asks for a service description.
func (b *Body) IsDescribeService() bool {
	return strings.EqualFold(b.Method(), describeService)
}

// ParameterList returns the call parameters in Content.
// Bodies with an empty target have none; an array is the parameter list, and anything else is a single parameter.
func (b *Body) ParameterList() []any {
	if b.IsEmptyTarget() {
		return []any{}
	}
	switch c := b.Content.(type) {
	case []any:
		return c
	case *ArrayCollection:
		return c.Source
	default:
		return []any{c}
	}
}
