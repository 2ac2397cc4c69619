package amf

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/stewi1014/amf/encio"
)

// writeAMF0 writes v as an AMF0 value.
// When the object encoding is AMF3, everything but primitives is written behind the AMF3 switch marker.
func (e *encodeState) writeAMF0(v reflect.Value) error {
	v, ok := concrete(v)
	if !ok {
		return e.w.WriteByte(amf0Null)
	}

	s := e.reg.strategy(v.Type())
	if s.amf0 == nil || (e.encoding == AMF3 && !s.primitive) {
		if err := e.w.WriteByte(amf0AMF3); err != nil {
			return err
		}
		return s.amf3(e, v)
	}
	return s.amf0(e, v)
}

// pointerTo returns v as a *T, along with its reference identity if v was a pointer.
func pointerTo[T any](v reflect.Value) (*T, any) {
	if v.Kind() == reflect.Pointer {
		return v.Interface().(*T), identity(v)
	}
	if v.CanAddr() {
		return v.Addr().Interface().(*T), nil
	}
	c := v.Interface().(T)
	return &c, nil
}

// numberOf returns the numeric value of v, which must be of an int, uint or float kind.
func numberOf(v reflect.Value) float64 {
	switch k := v.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		return float64(v.Int())
	case k >= reflect.Uint && k <= reflect.Uintptr:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func writeUndefined0(e *encodeState, v reflect.Value) error {
	return e.w.WriteByte(amf0Undefined)
}

func writeBool0(e *encodeState, v reflect.Value) error {
	if err := e.w.WriteByte(amf0Boolean); err != nil {
		return err
	}
	return e.w.WriteBool(v.Bool())
}

func writeNumber0(e *encodeState, v reflect.Value) error {
	if err := e.w.WriteByte(amf0Number); err != nil {
		return err
	}
	return e.w.WriteFloat64(numberOf(v))
}

func writeString0(e *encodeState, v reflect.Value) error {
	s := v.String()
	if len(s) > 0xffff {
		if err := e.w.WriteByte(amf0LongString); err != nil {
			return err
		}
		return e.w.WriteLongUTF(s)
	}

	if err := e.w.WriteByte(amf0String); err != nil {
		return err
	}
	return e.w.WriteUTF(s)
}

func writeDate0(e *encodeState, v reflect.Value) error {
	ms, tz := e.config.dateToWire(v.Interface().(time.Time))
	if err := e.w.WriteByte(amf0Date); err != nil {
		return err
	}
	if err := e.w.WriteFloat64(ms); err != nil {
		return err
	}
	return e.w.WriteInt16(tz)
}

// writeXML0 writes both kinds of XML as an AMF0 XML document.
func writeXML0(e *encodeState, v reflect.Value) error {
	if err := e.w.WriteByte(amf0XMLDocument); err != nil {
		return err
	}
	return e.w.WriteLongUTF(v.String())
}

// writeRaw writes pre-encoded bytes as they are, in either encoding.
func writeRaw(e *encodeState, v reflect.Value) error {
	_, err := e.w.Write(v.Bytes())
	return err
}

func (e *encodeState) writeObjectEnd0() error {
	if err := e.w.WriteUint16(0); err != nil {
		return err
	}
	return e.w.WriteByte(amf0ObjectEnd)
}

// writeMember0 writes one name-value pair of an AMF0 object or ECMA array.
func (e *encodeState) writeMember0(name string, v reflect.Value) error {
	if name == "" {
		return encio.NewError(encio.ErrFormat, "empty member name", 1)
	}
	if err := e.w.WriteUTF(name); err != nil {
		return err
	}
	return e.writeAMF0(v)
}

func writeStrictArray0(e *encodeState, v reflect.Value) error {
	if ref, err := e.amf0Reference(identity(v)); ref || err != nil {
		return err
	}

	n := v.Len()
	if uint64(n) > 0xffffffff {
		return encio.NewError(encio.ErrFormat, fmt.Sprintf("array of %v items is too long", n), 0)
	}
	if err := e.w.WriteByte(amf0StrictArray); err != nil {
		return err
	}
	if err := e.w.WriteUint32(uint32(n)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.writeAMF0(v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

type mapEntry struct {
	key   string
	value reflect.Value
}

// mapEntries returns the entries of a Go map, sorted by key so output is deterministic.
func mapEntries(v reflect.Value) []mapEntry {
	entries := make([]mapEntry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		var key string
		switch kind := k.Kind(); {
		case kind == reflect.String:
			key = k.String()
		case kind >= reflect.Int && kind <= reflect.Int64:
			key = strconv.FormatInt(k.Int(), 10)
		default:
			key = strconv.FormatUint(k.Uint(), 10)
		}
		entries = append(entries, mapEntry{key: key, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})
	return entries
}

// ecmaEntries returns the entries of an ECMAArray or Go map, and its reference identity.
func ecmaEntries(v reflect.Value) ([]mapEntry, any) {
	if v.Kind() == reflect.Map {
		return mapEntries(v), identity(v)
	}

	a, key := pointerTo[ECMAArray](v)
	entries := make([]mapEntry, 0, a.Len())
	a.Range(func(k string, val any) bool {
		entries = append(entries, mapEntry{key: k, value: reflect.ValueOf(val)})
		return true
	})
	return entries, key
}

func writeECMAArray0(e *encodeState, v reflect.Value) error {
	entries, key := ecmaEntries(v)
	if ref, err := e.amf0Reference(key); ref || err != nil {
		return err
	}

	if err := e.w.WriteByte(amf0ECMAArray); err != nil {
		return err
	}
	if err := e.w.WriteUint32(uint32(len(entries))); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := e.writeMember0(entry.key, entry.value); err != nil {
			return err
		}
	}
	return e.writeObjectEnd0()
}

// writeTyped0 writes anything with a TypeAdapter as an AMF0 object; typed if its definition has a class name.
// Externalizable objects have no AMF0 form and are written in AMF3.
func writeTyped0(e *encodeState, v reflect.Value) error {
	a := e.reg.AdapterFor(v.Type())
	if a == nil {
		return encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("cannot write %v as an object", v.Type()), 0)
	}

	iv := v.Interface()
	def, err := a.ClassDefinition(iv)
	if err != nil {
		return err
	}
	if def.Externalizable {
		if err := e.w.WriteByte(amf0AMF3); err != nil {
			return err
		}
		return writeTyped3(e, v)
	}

	var key any
	if v.Kind() == reflect.Pointer {
		key = identity(v)
	}
	if ref, err := e.amf0Reference(key); ref || err != nil {
		return err
	}

	if def.IsTyped() {
		if err := e.w.WriteByte(amf0TypedObject); err != nil {
			return err
		}
		if err := e.w.WriteUTF(def.ClassName); err != nil {
			return err
		}
	} else if err := e.w.WriteByte(amf0Object); err != nil {
		return err
	}

	for _, member := range def.Members {
		val, err := a.Get(iv, member)
		if err != nil {
			return err
		}
		if err := e.writeMember0(member, reflect.ValueOf(val)); err != nil {
			return err
		}
	}

	if da, ok := a.(DynamicAdapter); ok && def.Dynamic {
		for _, member := range da.DynamicMembers(iv) {
			val, err := a.Get(iv, member)
			if err != nil {
				return err
			}
			if err := e.writeMember0(member, reflect.ValueOf(val)); err != nil {
				return err
			}
		}
	}

	return e.writeObjectEnd0()
}

func writeElem0(e *encodeState, v reflect.Value) error {
	return e.writeAMF0(v.Elem())
}
