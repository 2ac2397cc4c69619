package amf

import (
	"fmt"
	"strings"
)

// Section is a part of a message.
type Section uint8

const (
	SectionVersion Section = iota
	SectionHeader
	SectionBody
)

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionBody:
		return "body"
	default:
		return "version"
	}
}

// MessageError is returned when a message cannot be encoded or decoded.
// It records where in the message the failure happened.
type MessageError struct {
	Section Section

	// Index of the header or body in the message.
	Index int

	// Name is the header name or body target.
	Name string

	// Response is the body response, if known.
	Response string

	// Class is the class name of the innermost object being decoded, if any.
	Class string

	// Offset is the stream offset the failure was noticed at.
	Offset int64

	Err error
}

func (e *MessageError) Error() string {
	var sb strings.Builder
	sb.WriteString("amf: ")
	sb.WriteString(e.Section.String())
	if e.Section != SectionVersion {
		fmt.Fprintf(&sb, " %v", e.Index)
	}
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Response != "" {
		fmt.Fprintf(&sb, " (response %q)", e.Response)
	}
	if e.Class != "" {
		fmt.Fprintf(&sb, " in class %v", e.Class)
	}
	fmt.Fprintf(&sb, " at offset %v: %v", e.Offset, e.Err)
	return sb.String()
}

func (e *MessageError) Unwrap() error {
	return e.Err
}
