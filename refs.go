package amf

import (
	"fmt"
	"io"
	"reflect"

	"github.com/stewi1014/amf/encio"
)

// Reference tables are per-exchange state. Handles are assigned in insertion order from 0,
// and are only valid until the next reset; the envelope codec resets before every header and body.
//
// Every inline composite value takes a handle, whether or not it can be referenced later,
// so that the writer's numbering matches the reader's.

// ptrKey identifies pointers, maps and slices. Slices of different lengths over the same array are different values.
type ptrKey struct {
	ty  reflect.Type
	ptr uintptr
	len int
}

// dateKey identifies AMF3 dates, which are referenced by value.
type dateKey float64

// xmlKey identifies XML values, which are referenced by value.
type xmlKey struct {
	legacy bool
	text   string
}

// identity returns the reference identity of v, or nil if v can't be referenced.
func identity(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		return ptrKey{ty: v.Type(), ptr: v.Pointer()}
	case reflect.Slice:
		// Empty slices may share their array pointer.
		if v.Pointer() == 0 || v.Len() == 0 {
			return nil
		}
		return ptrKey{ty: v.Type(), ptr: v.Pointer(), len: v.Len()}
	default:
		return nil
	}
}

type traitRef struct {
	def   *ClassDefinition
	index int
}

func newEncodeState(w io.Writer, config *Config) *encodeState {
	return &encodeState{
		w:           encio.NewWriter(w),
		config:      config,
		reg:         config.Registry,
		encoding:    config.ObjectEncoding,
		objects:     make(map[any]int),
		strings:     make(map[string]int),
		traits:      make(map[uint64][]traitRef),
		amf0Objects: make(map[any]int),
	}
}

// encodeState is the writer side of an exchange; the output and its reference tables.
type encodeState struct {
	w      *encio.Writer
	config *Config
	reg    *Registry

	// encoding is the object encoding of the current header or body.
	encoding ObjectEncoding

	objects     map[any]int
	objectCount int
	strings     map[string]int
	traits      map[uint64][]traitRef
	traitCount  int

	amf0Objects map[any]int
	amf0Count   int
}

func (e *encodeState) reset() {
	clear(e.objects)
	e.objectCount = 0
	clear(e.strings)
	clear(e.traits)
	e.traitCount = 0
	clear(e.amf0Objects)
	e.amf0Count = 0
}

// amf3Reference writes a reference and returns true if key was written before.
// Otherwise it takes the next object handle for the value about to be written inline.
func (e *encodeState) amf3Reference(key any) (bool, error) {
	if key != nil {
		if h, ok := e.objects[key]; ok {
			return true, e.w.WriteU29(uint32(h) << 1)
		}
	}

	h := e.objectCount
	e.objectCount++
	if key != nil {
		e.objects[key] = h
	}
	return false, nil
}

// amf3Trait writes a trait reference and returns true if def was written before.
// Otherwise it takes the next trait handle for def.
func (e *encodeState) amf3Trait(def *ClassDefinition) (bool, error) {
	fp := def.Fingerprint()
	for _, ref := range e.traits[fp] {
		if ref.def.Equal(def) {
			return true, e.w.WriteU29(uint32(ref.index)<<2 | 0x01)
		}
	}

	e.traits[fp] = append(e.traits[fp], traitRef{def: def, index: e.traitCount})
	e.traitCount++
	return false, nil
}

// amf0Reference writes an AMF0 reference and returns true if key was written before.
// AMF0 handles are 16 bits; objects past that are written inline again.
func (e *encodeState) amf0Reference(key any) (bool, error) {
	if key != nil {
		if h, ok := e.amf0Objects[key]; ok && h <= 0xffff {
			if err := e.w.WriteByte(amf0Reference); err != nil {
				return true, err
			}
			return true, e.w.WriteUint16(uint16(h))
		}
	}

	h := e.amf0Count
	e.amf0Count++
	if key != nil {
		if _, ok := e.amf0Objects[key]; !ok {
			e.amf0Objects[key] = h
		}
	}
	return false, nil
}

func newDecodeState(r io.Reader, config *Config) *decodeState {
	return &decodeState{
		r:      encio.NewReader(r),
		config: config,
		reg:    config.Registry,
	}
}

// decodeState is the reader side of an exchange; the input, its reference tables and recorded bind failures.
type decodeState struct {
	r      *encio.Reader
	config *Config
	reg    *Registry

	objects     []any
	strings     []string
	traits      []*ClassDefinition
	amf0Objects []any

	// class is the class name of the innermost object being decoded.
	class string

	lastErr  error
	failures int
}

func (d *decodeState) reset() {
	clear(d.objects)
	d.objects = d.objects[:0]
	clear(d.strings)
	d.strings = d.strings[:0]
	clear(d.traits)
	d.traits = d.traits[:0]
	clear(d.amf0Objects)
	d.amf0Objects = d.amf0Objects[:0]
	d.class = ""
}

// addObject takes the next object handle for v.
func (d *decodeState) addObject(v any) int {
	d.objects = append(d.objects, v)
	return len(d.objects) - 1
}

func (d *decodeState) lookupObject(handle uint32) (any, error) {
	if uint64(handle) >= uint64(len(d.objects)) {
		return nil, encio.NewError(encio.ErrInvalidReference, fmt.Sprintf("object %v of %v at offset %v", handle, len(d.objects), d.r.Offset()), 0)
	}
	return d.objects[handle], nil
}

func (d *decodeState) lookupString(handle uint32) (string, error) {
	if uint64(handle) >= uint64(len(d.strings)) {
		return "", encio.NewError(encio.ErrInvalidReference, fmt.Sprintf("string %v of %v at offset %v", handle, len(d.strings), d.r.Offset()), 0)
	}
	return d.strings[handle], nil
}

func (d *decodeState) lookupTrait(handle uint32) (*ClassDefinition, error) {
	if uint64(handle) >= uint64(len(d.traits)) {
		return nil, encio.NewError(encio.ErrInvalidReference, fmt.Sprintf("trait %v of %v at offset %v", handle, len(d.traits), d.r.Offset()), 0)
	}
	return d.traits[handle], nil
}

func (d *decodeState) lookupAMF0Object(handle uint16) (any, error) {
	if int(handle) >= len(d.amf0Objects) {
		return nil, encio.NewError(encio.ErrInvalidReference, fmt.Sprintf("object %v of %v at offset %v", handle, len(d.amf0Objects), d.r.Offset()), 0)
	}
	return d.amf0Objects[handle], nil
}

// bind handles the result of setting a member.
// Bind failures are recorded and dropped when fault tolerant; everything else is returned.
func (d *decodeState) bind(err error, member string) error {
	if err == nil || !d.config.FaultTolerant || encio.IsStructural(err) {
		return err
	}

	d.lastErr = err
	d.failures++
	d.config.Logger.Warn("amf: member bind failure",
		"class", d.class,
		"member", member,
		"offset", d.r.Offset(),
		"error", err,
	)
	return nil
}
