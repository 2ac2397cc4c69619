package amf

import (
	"errors"
	"fmt"

	"github.com/stewi1014/amf/encio"
)

type readFunc func(d *decodeState) (any, error)

// preallocLimit is the most items allocated for a collection before they are read.
// Longer collections grow as their items arrive, so a forged count costs no more than the data behind it.
const preallocLimit = 1 << 10

// readItems reads n items with read, growing items as they arrive.
func readItems[T any](n uint32, items *[]T, read func() (T, error)) error {
	*items = make([]T, 0, min(n, preallocLimit))
	for i := uint32(0); i < n; i++ {
		item, err := read()
		if err != nil {
			return err
		}
		*items = append(*items, item)
	}
	return nil
}

// readArray reads a dense array of n values, passing it to store before its items are read if it is short enough to allocate up front.
// References from inside longer arrays see whatever the caller stored beforehand.
func readArray(n uint32, store func([]any), read func() (any, error)) ([]any, error) {
	if n <= preallocLimit {
		arr := make([]any, n)
		store(arr)
		for i := range arr {
			var err error
			if arr[i], err = read(); err != nil {
				return nil, err
			}
		}
		return arr, nil
	}

	var arr []any
	if err := readItems(n, &arr, read); err != nil {
		return nil, err
	}
	return arr, nil
}

var amf0Readers [markerCount]readFunc

// The readers recurse back into readAMF0, so the table is assigned in init.
func init() {
	amf0Readers = [markerCount]readFunc{
		amf0Number:      readNumber0,
		amf0Boolean:     readBool0,
		amf0String:      readString0,
		amf0Object:      readObject0,
		amf0Null:        readNull,
		amf0Undefined:   readUndefined,
		amf0Reference:   readReference0,
		amf0ECMAArray:   readECMAArray0,
		amf0StrictArray: readStrictArray0,
		amf0Date:        readDate0,
		amf0LongString:  readLongString0,
		amf0XMLDocument: readXMLDocument0,
		amf0TypedObject: readTypedObject0,
		amf0AMF3:        readAMF3Switch,
	}
}

// readAMF0 reads an AMF0 value.
func (d *decodeState) readAMF0() (any, error) {
	marker, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if int(marker) >= markerCount || amf0Readers[marker] == nil {
		return nil, encio.NewError(encio.ErrUnsupportedMarker, fmt.Sprintf("AMF0 marker %#x at offset %v", marker, d.r.Offset()-1), 0)
	}
	return amf0Readers[marker](d)
}

func readNull(d *decodeState) (any, error) {
	return nil, nil
}

func readUndefined(d *decodeState) (any, error) {
	return Undefined{}, nil
}

func readNumber0(d *decodeState) (any, error) {
	return d.r.ReadFloat64()
}

func readBool0(d *decodeState) (any, error) {
	return d.r.ReadBool()
}

func readString0(d *decodeState) (any, error) {
	return d.r.ReadUTF()
}

func readLongString0(d *decodeState) (any, error) {
	return d.r.ReadLongUTF()
}

func readXMLDocument0(d *decodeState) (any, error) {
	s, err := d.r.ReadLongUTF()
	if err != nil {
		return nil, err
	}
	return XMLDocument(s), nil
}

func readDate0(d *decodeState) (any, error) {
	ms, err := d.r.ReadFloat64()
	if err != nil {
		return nil, err
	}
	tz, err := d.r.ReadInt16()
	if err != nil {
		return nil, err
	}
	return d.config.dateFromWire(ms, tz, true), nil
}

func readReference0(d *decodeState) (any, error) {
	handle, err := d.r.ReadUint16()
	if err != nil {
		return nil, err
	}
	return d.lookupAMF0Object(handle)
}

func readAMF3Switch(d *decodeState) (any, error) {
	return d.readAMF3()
}

// readObjectEnd0 reads the end marker following the empty name that ends an object.
func (d *decodeState) readObjectEnd0() error {
	marker, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	if marker != amf0ObjectEnd {
		return encio.NewError(encio.ErrFormat, fmt.Sprintf("expected object end, got marker %#x at offset %v", marker, d.r.Offset()-1), 0)
	}
	return nil
}

// readMembers0 reads name-value pairs into obj until the object end.
func (d *decodeState) readMembers0(obj any, a TypeAdapter) error {
	for {
		name, err := d.r.ReadUTF()
		if err != nil {
			return err
		}
		if name == "" {
			return d.readObjectEnd0()
		}

		val, err := d.readAMF0()
		if err != nil {
			return err
		}
		if err := d.bind(a.Set(obj, name, val), name); err != nil {
			return err
		}
	}
}

func readObject0(d *decodeState) (any, error) {
	o := NewObject("")
	d.amf0Objects = append(d.amf0Objects, o)
	if err := d.readMembers0(o, objectAdapter{reg: d.reg}); err != nil {
		return nil, err
	}
	return o, nil
}

func readTypedObject0(d *decodeState) (any, error) {
	name, err := d.r.ReadUTF()
	if err != nil {
		return nil, err
	}

	obj, a, err := d.instantiate(name)
	if err != nil {
		return nil, err
	}
	d.amf0Objects = append(d.amf0Objects, obj)

	outer := d.class
	d.class = name
	if err := d.readMembers0(obj, a); err != nil {
		return nil, err
	}
	d.class = outer
	return obj, nil
}

func readECMAArray0(d *decodeState) (any, error) {
	// The count is only a hint; the array ends at the object end.
	if _, err := d.r.ReadUint32(); err != nil {
		return nil, err
	}

	arr := NewECMAArray()
	d.amf0Objects = append(d.amf0Objects, arr)
	for {
		key, err := d.r.ReadUTF()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return arr, d.readObjectEnd0()
		}

		val, err := d.readAMF0()
		if err != nil {
			return nil, err
		}
		arr.Set(key, val)
	}
}

func readStrictArray0(d *decodeState) (any, error) {
	n, err := d.r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if err := d.checkLength(n); err != nil {
		return nil, err
	}

	handle := len(d.amf0Objects)
	d.amf0Objects = append(d.amf0Objects, nil)
	arr, err := readArray(n, func(arr []any) { d.amf0Objects[handle] = arr }, d.readAMF0)
	if err != nil {
		return nil, err
	}
	d.amf0Objects[handle] = arr
	return arr, nil
}

// instantiate returns a new instance of className to decode into, and its adapter.
// Unresolved classes decode as typed Objects.
func (d *decodeState) instantiate(className string) (any, TypeAdapter, error) {
	if className == "" {
		return NewObject(""), objectAdapter{reg: d.reg}, nil
	}

	obj, a, err := d.reg.New(className)
	if err == nil {
		return obj, a, nil
	}
	if !errors.Is(err, ErrNotRegistered) {
		return nil, nil, err
	}

	d.config.Logger.Warn("amf: unresolved class, decoding as Object",
		"class", className,
		"offset", d.r.Offset(),
	)
	return NewObject(className), objectAdapter{reg: d.reg}, nil
}
