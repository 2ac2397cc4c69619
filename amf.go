// Package amf implements the Action Message Format, the binary encoding used by Flash and Flex remoting.
//
// Messages are made of headers and bodies, each holding one value. Values are written in AMF0,
// or in AMF3 embedded in AMF0 when a message's version is 3. Decoder documents the Go types values decode to.
//
// Go values are written according to their type. Structs, Externalizable types and errors are written as typed objects,
// using the class name they are registered under in a Registry, or their package path and type name otherwise.
// Struct members are the exported fields, in declaration order, renamed or skipped with the "amf" struct tag.
// Types can take full control of their members by registering a TypeAdapter.
//
// Objects that appear more than once in a value are written once and referenced after that,
// so cyclic values can be written, and decode to the same cycle.
//
// Package amf/encio provides the primitive codec and the error types.
package amf

import (
	"bytes"
)

// Marshal returns the encoding of m, using the default Config.
func Marshal(m *Message) ([]byte, error) {
	var buff bytes.Buffer
	if err := NewEncoder(&buff, nil).Encode(m); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// Unmarshal decodes a message from data, using the default Config.
func Unmarshal(data []byte) (*Message, error) {
	return NewDecoder(bytes.NewReader(data), nil).Decode()
}
