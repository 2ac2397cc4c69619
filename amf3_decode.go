package amf

import (
	"fmt"
	"strconv"

	"github.com/stewi1014/amf/encio"
)

var amf3Readers [markerCount]readFunc

func init() {
	amf3Readers = [markerCount]readFunc{
		amf3Undefined:    readUndefined,
		amf3Null:         readNull,
		amf3False:        readFalse3,
		amf3True:         readTrue3,
		amf3Integer:      readInteger3,
		amf3Double:       readDouble3,
		amf3String:       readString3,
		amf3XMLDocument:  readXMLDocument3,
		amf3Date:         readDate3,
		amf3Array:        readArray3,
		amf3Object:       readObject3,
		amf3XML:          readXML3,
		amf3ByteArray:    readByteArray3,
		amf3IntVector:    readIntVector3,
		amf3UintVector:   readUintVector3,
		amf3DoubleVector: readDoubleVector3,
		amf3ObjectVector: readObjectVector3,
	}
}

// readAMF3 reads an AMF3 value.
func (d *decodeState) readAMF3() (any, error) {
	marker, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if int(marker) >= markerCount || amf3Readers[marker] == nil {
		return nil, encio.NewError(encio.ErrUnsupportedMarker, fmt.Sprintf("AMF3 marker %#x at offset %v", marker, d.r.Offset()-1), 0)
	}
	return amf3Readers[marker](d)
}

// readAMF3String reads a string reference or inline string.
func (d *decodeState) readAMF3String() (string, error) {
	ref, err := d.r.ReadU29()
	if err != nil {
		return "", err
	}
	if ref&0x01 == 0 {
		return d.lookupString(ref >> 1)
	}

	s, err := d.r.ReadUTFBytes(ref >> 1)
	if err != nil || s == "" {
		return s, err
	}
	d.strings = append(d.strings, s)
	return s, nil
}

// readHeader3 reads the U29 header of a value that can be referenced.
// If it is a reference, the referenced object is returned with ok false.
// Otherwise the header's value is returned with ok true.
func (d *decodeState) readHeader3() (n uint32, obj any, ok bool, err error) {
	ref, err := d.r.ReadU29()
	if err != nil {
		return 0, nil, false, err
	}
	if ref&0x01 == 0 {
		obj, err = d.lookupObject(ref >> 1)
		return 0, obj, false, err
	}
	return ref >> 1, nil, true, nil
}

// checkLength returns an error if n items is more than can be sensibly allocated.
func (d *decodeState) checkLength(n uint32) error {
	if uintptr(n) > encio.TooBig {
		return encio.NewError(encio.ErrFormat, fmt.Sprintf("length %v at offset %v", n, d.r.Offset()), 1)
	}
	return nil
}

func readFalse3(d *decodeState) (any, error) {
	return false, nil
}

func readTrue3(d *decodeState) (any, error) {
	return true, nil
}

func readInteger3(d *decodeState) (any, error) {
	return d.r.ReadInt29()
}

func readDouble3(d *decodeState) (any, error) {
	return d.r.ReadFloat64()
}

func readString3(d *decodeState) (any, error) {
	return d.readAMF3String()
}

func (d *decodeState) readXML3() (string, any, bool, error) {
	n, obj, ok, err := d.readHeader3()
	if err != nil || !ok {
		return "", obj, false, err
	}
	s, err := d.r.ReadUTFBytes(n)
	return s, nil, true, err
}

func readXMLDocument3(d *decodeState) (any, error) {
	s, obj, ok, err := d.readXML3()
	if err != nil || !ok {
		return obj, err
	}
	doc := XMLDocument(s)
	d.addObject(doc)
	return doc, nil
}

func readXML3(d *decodeState) (any, error) {
	s, obj, ok, err := d.readXML3()
	if err != nil || !ok {
		return obj, err
	}
	x := XML(s)
	d.addObject(x)
	return x, nil
}

func readDate3(d *decodeState) (any, error) {
	_, obj, ok, err := d.readHeader3()
	if err != nil || !ok {
		return obj, err
	}
	ms, err := d.r.ReadFloat64()
	if err != nil {
		return nil, err
	}
	t := d.config.dateFromWire(ms, 0, false)
	d.addObject(t)
	return t, nil
}

func readByteArray3(d *decodeState) (any, error) {
	n, obj, ok, err := d.readHeader3()
	if err != nil || !ok {
		return obj, err
	}
	b, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	ba := NewByteArray(b)
	d.addObject(ba)
	return ba, nil
}

// readArray3 reads an array.
// Arrays with no associative part are []any; others are *ECMAArray, with dense items keyed by their index after the associative members.
func readArray3(d *decodeState) (any, error) {
	n, obj, ok, err := d.readHeader3()
	if err != nil || !ok {
		return obj, err
	}
	if err := d.checkLength(n); err != nil {
		return nil, err
	}

	// The array takes its handle before its contents are read, so they can refer to it.
	handle := d.addObject(nil)

	key, err := d.readAMF3String()
	if err != nil {
		return nil, err
	}

	if key == "" {
		arr, err := readArray(n, func(arr []any) { d.objects[handle] = arr }, d.readAMF3)
		if err != nil {
			return nil, err
		}
		d.objects[handle] = arr
		return arr, nil
	}

	ecma := NewECMAArray()
	d.objects[handle] = ecma
	for key != "" {
		val, err := d.readAMF3()
		if err != nil {
			return nil, err
		}
		ecma.Set(key, val)

		if key, err = d.readAMF3String(); err != nil {
			return nil, err
		}
	}
	for i := uint32(0); i < n; i++ {
		val, err := d.readAMF3()
		if err != nil {
			return nil, err
		}
		ecma.Set(strconv.FormatUint(uint64(i), 10), val)
	}
	return ecma, nil
}

// readTrait reads an inline trait, given its header without the object reference bit.
func (d *decodeState) readTrait(header uint32) (*ClassDefinition, error) {
	def := &ClassDefinition{
		Externalizable: header&0x02 != 0,
		Dynamic:        header&0x04 != 0,
	}

	n := header >> 3
	if err := d.checkLength(n); err != nil {
		return nil, err
	}

	name, err := d.readAMF3String()
	if err != nil {
		return nil, err
	}
	def.ClassName = name

	if n > 0 {
		if err := readItems(n, &def.Members, d.readAMF3String); err != nil {
			return nil, err
		}
	}

	d.traits = append(d.traits, def)

	d.config.Logger.Debug("amf: read class definition",
		"definition", def,
		"offset", d.r.Offset(),
	)
	return def, nil
}

func readObject3(d *decodeState) (any, error) {
	header, obj, ok, err := d.readHeader3()
	if err != nil || !ok {
		return obj, err
	}

	var def *ClassDefinition
	if header&0x01 == 0 {
		def, err = d.lookupTrait(header >> 1)
	} else {
		def, err = d.readTrait(header)
	}
	if err != nil {
		return nil, err
	}

	obj, a, err := d.instantiate(def.ClassName)
	if err != nil {
		return nil, err
	}
	d.addObject(obj)

	outer := d.class
	d.class = def.ClassName

	if def.Externalizable {
		ext, ok := obj.(Externalizable)
		if !ok {
			return nil, encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("cannot read externalizable %v into %T", def.ClassName, obj), 0)
		}
		if err := ext.ReadExternal(dataInput{d: d}); err != nil {
			return nil, err
		}
		d.class = outer
		return obj, nil
	}

	for _, member := range def.Members {
		val, err := d.readAMF3()
		if err != nil {
			return nil, err
		}
		if err := d.bind(a.Set(obj, member, val), member); err != nil {
			return nil, err
		}
	}

	if def.Dynamic {
		for {
			member, err := d.readAMF3String()
			if err != nil {
				return nil, err
			}
			if member == "" {
				break
			}

			val, err := d.readAMF3()
			if err != nil {
				return nil, err
			}
			if err := d.bind(a.Set(obj, member, val), member); err != nil {
				return nil, err
			}
		}
	}

	d.class = outer
	return obj, nil
}

// readVectorHeader reads the length and fixed flag of a vector.
func (d *decodeState) readVectorHeader() (n uint32, fixed bool, obj any, ok bool, err error) {
	n, obj, ok, err = d.readHeader3()
	if err != nil || !ok {
		return 0, false, obj, false, err
	}
	if err = d.checkLength(n); err != nil {
		return 0, false, nil, false, err
	}
	fixed, err = d.r.ReadBool()
	return n, fixed, nil, err == nil, err
}

func readIntVector3(d *decodeState) (any, error) {
	n, fixed, obj, ok, err := d.readVectorHeader()
	if err != nil || !ok {
		return obj, err
	}
	vec := &IntVector{Fixed: fixed}
	d.addObject(vec)
	if err := readItems(n, &vec.Items, d.r.ReadInt32); err != nil {
		return nil, err
	}
	return vec, nil
}

func readUintVector3(d *decodeState) (any, error) {
	n, fixed, obj, ok, err := d.readVectorHeader()
	if err != nil || !ok {
		return obj, err
	}
	vec := &UintVector{Fixed: fixed}
	d.addObject(vec)
	if err := readItems(n, &vec.Items, d.r.ReadUint32); err != nil {
		return nil, err
	}
	return vec, nil
}

func readDoubleVector3(d *decodeState) (any, error) {
	n, fixed, obj, ok, err := d.readVectorHeader()
	if err != nil || !ok {
		return obj, err
	}
	vec := &DoubleVector{Fixed: fixed}
	d.addObject(vec)
	if err := readItems(n, &vec.Items, d.r.ReadFloat64); err != nil {
		return nil, err
	}
	return vec, nil
}

func readObjectVector3(d *decodeState) (any, error) {
	n, fixed, obj, ok, err := d.readVectorHeader()
	if err != nil || !ok {
		return obj, err
	}
	typeName, err := d.readAMF3String()
	if err != nil {
		return nil, err
	}
	vec := &ObjectVector{Fixed: fixed, TypeName: typeName}
	d.addObject(vec)
	if err := readItems(n, &vec.Items, d.readAMF3); err != nil {
		return nil, err
	}
	return vec, nil
}
