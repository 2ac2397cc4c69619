package amf

import (
	"fmt"
	"reflect"
	"time"

	"github.com/stewi1014/amf/encio"
)

// writeFunc writes v, which is never a nil pointer, map, slice or interface.
type writeFunc func(e *encodeState, v reflect.Value) error

// strategy is how values of one Go type are written.
type strategy struct {
	// amf0 is nil for types with no AMF0 form; they are written behind the AMF3 switch marker.
	amf0 writeFunc
	amf3 writeFunc

	// primitive types keep their AMF0 form when the object encoding is AMF3.
	primitive bool
}

var (
	timeType      = reflect.TypeOf(time.Time{})
	undefinedType = reflect.TypeOf(Undefined{})
)

// exactStrategies are strategies for specific types, checked before kinds.
// Types with reference identity are listed as both T and *T.
var exactStrategies map[reflect.Type]*strategy

func init() {
	exactStrategies = map[reflect.Type]*strategy{
		undefinedType:                     {amf0: writeUndefined0, amf3: writeUndefined3, primitive: true},
		timeType:                          {amf0: writeDate0, amf3: writeDate3, primitive: true},
		reflect.TypeOf(XMLDocument("")):   {amf0: writeXML0, amf3: writeXMLDocument3},
		reflect.TypeOf(XML("")):           {amf0: writeXML0, amf3: writeXML3},
		reflect.TypeOf(RawBinary(nil)):    {amf0: writeRaw, amf3: writeRaw, primitive: true},
		reflect.TypeOf([]byte(nil)):       {amf3: writeBytes3},
		byteArrayType:                     {amf3: writeByteArray3},
		reflect.PointerTo(byteArrayType):  {amf3: writeByteArray3},
		objectType:                        {amf0: writeTyped0, amf3: writeTyped3},
		reflect.PointerTo(objectType):     {amf0: writeTyped0, amf3: writeTyped3},
		reflect.TypeOf(ECMAArray{}):       {amf0: writeECMAArray0, amf3: writeECMAArray3},
		reflect.TypeOf(&ECMAArray{}):      {amf0: writeECMAArray0, amf3: writeECMAArray3},
		reflect.TypeOf(IntVector{}):       {amf3: writeIntVector3},
		reflect.TypeOf(&IntVector{}):      {amf3: writeIntVector3},
		reflect.TypeOf(UintVector{}):      {amf3: writeUintVector3},
		reflect.TypeOf(&UintVector{}):     {amf3: writeUintVector3},
		reflect.TypeOf(DoubleVector{}):    {amf3: writeDoubleVector3},
		reflect.TypeOf(&DoubleVector{}):   {amf3: writeDoubleVector3},
		reflect.TypeOf(ObjectVector{}):    {amf3: writeObjectVector3},
		reflect.TypeOf(&ObjectVector{}):   {amf3: writeObjectVector3},
	}
}

var (
	boolStrategy   *strategy
	intStrategy    *strategy
	uintStrategy   *strategy
	floatStrategy  *strategy
	stringStrategy *strategy
	bytesStrategy  *strategy
	arrayStrategy  *strategy
	mapStrategy    *strategy
	typedStrategy  *strategy
	ptrStrategy    *strategy
)

// Strategies refer back to the strategy cache through the values they write, so they're assigned in init.
func init() {
	boolStrategy = &strategy{amf0: writeBool0, amf3: writeBool3, primitive: true}
	intStrategy = &strategy{amf0: writeNumber0, amf3: writeInt3, primitive: true}
	uintStrategy = &strategy{amf0: writeNumber0, amf3: writeUint3, primitive: true}
	floatStrategy = &strategy{amf0: writeNumber0, amf3: writeDouble3, primitive: true}
	stringStrategy = &strategy{amf0: writeString0, amf3: writeString3, primitive: true}
	bytesStrategy = &strategy{amf3: writeBytes3}
	arrayStrategy = &strategy{amf0: writeStrictArray0, amf3: writeArray3}
	mapStrategy = &strategy{amf0: writeECMAArray0, amf3: writeECMAArray3}
	typedStrategy = &strategy{amf0: writeTyped0, amf3: writeTyped3}
	ptrStrategy = &strategy{amf0: writeElem0, amf3: writeElem3}
}

func noSerializer(ty reflect.Type) *strategy {
	write := func(e *encodeState, v reflect.Value) error {
		return encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("cannot write %v", ty), 0)
	}
	return &strategy{amf0: write, amf3: write, primitive: true}
}

// strategy returns the cached strategy for ty, creating it if needed.
func (reg *Registry) strategy(ty reflect.Type) *strategy {
	s, _ := reg.strategies.computeIfAbsent(ty, func() (*strategy, error) {
		return reg.newStrategy(ty), nil
	})
	return s
}

// newStrategy picks a strategy for ty.
// Explicit adapters come first, then specific types, then anything that can be written as a typed object, then kinds.
func (reg *Registry) newStrategy(ty reflect.Type) *strategy {
	elem := elemType(ty)
	if _, ok := reg.explicit.load(elem); ok {
		return typedStrategy
	}

	if s, ok := exactStrategies[ty]; ok {
		return s
	}

	if _, ok := reg.names.load(elem); ok {
		return typedStrategy
	}

	ptrt := reflect.PointerTo(elem)
	if ptrt.Implements(externalizableType) || ty.Implements(errorType) {
		return typedStrategy
	}

	switch ty.Kind() {
	case reflect.Bool:
		return boolStrategy
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intStrategy
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintStrategy
	case reflect.Float32, reflect.Float64:
		return floatStrategy
	case reflect.String:
		return stringStrategy
	case reflect.Slice:
		if ty.Elem().Kind() == reflect.Uint8 {
			return bytesStrategy
		}
		return arrayStrategy
	case reflect.Array:
		return arrayStrategy
	case reflect.Map:
		switch ty.Key().Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return mapStrategy
		}
	case reflect.Pointer:
		if _, ok := exactStrategies[ty.Elem()]; !ok && ty.Elem().Kind() == reflect.Struct {
			return typedStrategy
		}
		return ptrStrategy
	case reflect.Struct:
		return typedStrategy
	}

	return noSerializer(ty)
}

// concrete unwraps interfaces, returning false for nil values.
func concrete(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Invalid:
		return v, false
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v, !v.IsNil()
	}
	return v, true
}
