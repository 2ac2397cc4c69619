package amf

import (
	"fmt"
	"strings"
)

// orderedMap is a string keyed map that remembers insertion order.
// The zero value is an empty map.
type orderedMap struct {
	keys   []string
	values map[string]any
}

// Get returns the value for key.
func (m *orderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is set.
func (m *orderedMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set sets key to v. New keys are appended, existing keys keep their position.
func (m *orderedMap) Set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key.
func (m *orderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return
		}
	}
}

// Len returns the number of keys.
func (m *orderedMap) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *orderedMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Range calls f for each key in insertion order until f returns false.
func (m *orderedMap) Range(f func(key string, v any) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

func (m *orderedMap) format(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch v := m.values[k].(type) {
		case *Object:
			// nested objects aren't expanded, as they may be cyclic
			if v == nil {
				fmt.Fprintf(sb, "%q: <nil>", k)
			} else {
				fmt.Fprintf(sb, "%q: %v{...}", k, v.Alias)
			}
		case *ECMAArray:
			fmt.Fprintf(sb, "%q: {...}", k)
		default:
			fmt.Fprintf(sb, "%q: %v", k, v)
		}
	}
	sb.WriteByte('}')
}

// NewObject returns an empty Object with the given alias.
// An empty alias makes a dynamic object.
func NewObject(alias string) *Object {
	return &Object{Alias: alias}
}

// Object is an ActionScript object; an insertion ordered set of members.
//
// With an empty Alias, the object is dynamic and has no class. Its members are written as a dynamic tail.
// With an Alias, the object is typed; its class name is Alias and its members are written as sealed members.
// Objects decoded with a class name that isn't registered are returned as typed Objects, so they can be written back unchanged.
//
// Object identity, and so reference tracking, is by pointer.
type Object struct {
	Alias string
	orderedMap
}

// IsTyped reports whether the object has a class name.
func (o *Object) IsTyped() bool {
	return o.Alias != ""
}

func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteString(o.Alias)
	o.format(&sb)
	return sb.String()
}

// ECMAArray is an associative array; AMF0's ECMA array, or an AMF3 array with associative members.
// Keys keep insertion order.
type ECMAArray struct {
	orderedMap
}

// NewECMAArray returns an empty ECMAArray.
func NewECMAArray() *ECMAArray {
	return new(ECMAArray)
}

func (a *ECMAArray) String() string {
	var sb strings.Builder
	a.format(&sb)
	return sb.String()
}
