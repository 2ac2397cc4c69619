package amf

import (
	"fmt"
	"reflect"
	"strconv"
)

var byteArrayType = reflect.TypeOf(ByteArray{})

// convert coerces a decoded value into the Go type to.
// Decoded values have few types; numbers are int32 or float64, arrays are []any, and
// associative data is *ECMAArray or *Object. convert maps them onto the richer types of struct members.
func convert(reg *Registry, value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	if _, ok := value.(Undefined); ok && to != reflect.TypeOf(Undefined{}) {
		return reflect.Zero(to), nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}

	switch to.Kind() {
	case reflect.Interface:
		// not assignable, so not implemented
		return reflect.Value{}, fmt.Errorf("%T does not implement %v", value, to)

	case reflect.Bool:
		if v.Kind() == reflect.Bool {
			return v.Convert(to), nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return convertNumber(v, to)

	case reflect.String:
		switch {
		case v.Kind() == reflect.String:
			return v.Convert(to), nil
		case isNumber(v.Kind()):
			return reflect.ValueOf(fmt.Sprint(value)).Convert(to), nil
		}

	case reflect.Slice:
		return convertSlice(reg, value, to)

	case reflect.Array:
		items, ok := value.([]any)
		if !ok {
			break
		}
		if len(items) > to.Len() {
			return reflect.Value{}, fmt.Errorf("%v items do not fit in %v", len(items), to)
		}
		arr := reflect.New(to).Elem()
		for i, item := range items {
			ev, err := convert(reg, item, to.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("index %v: %w", i, err)
			}
			arr.Index(i).Set(ev)
		}
		return arr, nil

	case reflect.Map:
		return convertMap(reg, value, to)

	case reflect.Struct:
		if v.Kind() == reflect.Pointer && v.Type().Elem() == to {
			if v.IsNil() {
				return reflect.Zero(to), nil
			}
			return v.Elem(), nil
		}
		if o, ok := value.(*Object); ok {
			ptr, err := objectToStruct(reg, o, to)
			if err != nil {
				return reflect.Value{}, err
			}
			return ptr.Elem(), nil
		}

	case reflect.Pointer:
		if o, ok := value.(*Object); ok && to.Elem().Kind() == reflect.Struct {
			return objectToStruct(reg, o, to.Elem())
		}
		ev, err := convert(reg, value, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(ev)
		return ptr, nil
	}

	return reflect.Value{}, fmt.Errorf("cannot convert %T to %v", value, to)
}

func isNumber(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uintptr) || k == reflect.Float32 || k == reflect.Float64
}

func convertNumber(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	var f float64
	switch k := v.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		f = float64(v.Int())
	case k >= reflect.Uint && k <= reflect.Uintptr:
		f = float64(v.Uint())
	case k == reflect.Float32 || k == reflect.Float64:
		f = v.Float()
	case k == reflect.String:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return reflect.Value{}, err
		}
		f = parsed
	default:
		return reflect.Value{}, fmt.Errorf("cannot convert %v to %v", v.Type(), to)
	}

	out := reflect.New(to).Elem()
	switch k := to.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		if f != float64(int64(f)) || out.OverflowInt(int64(f)) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %v", f, to)
		}
		out.SetInt(int64(f))
	case k >= reflect.Uint && k <= reflect.Uintptr:
		if f < 0 || f != float64(uint64(f)) || out.OverflowUint(uint64(f)) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %v", f, to)
		}
		out.SetUint(uint64(f))
	default:
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %v", f, to)
		}
		out.SetFloat(f)
	}
	return out, nil
}

func convertSlice(reg *Registry, value any, to reflect.Type) (reflect.Value, error) {
	var items []any
	switch src := value.(type) {
	case []any:
		items = src
	case *ArrayCollection:
		items = src.Source
	case *ByteArray:
		if to.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf(append([]byte(nil), src.Bytes()...)).Convert(to), nil
		}
	case *IntVector:
		items = make([]any, len(src.Items))
		for i, n := range src.Items {
			items[i] = n
		}
	case *UintVector:
		items = make([]any, len(src.Items))
		for i, n := range src.Items {
			items[i] = n
		}
	case *DoubleVector:
		items = make([]any, len(src.Items))
		for i, n := range src.Items {
			items[i] = n
		}
	case *ObjectVector:
		items = src.Items
	}
	if items == nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %v", value, to)
	}

	slice := reflect.MakeSlice(to, len(items), len(items))
	for i, item := range items {
		ev, err := convert(reg, item, to.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("index %v: %w", i, err)
		}
		slice.Index(i).Set(ev)
	}
	return slice, nil
}

func convertMap(reg *Registry, value any, to reflect.Type) (reflect.Value, error) {
	var src *orderedMap
	switch m := value.(type) {
	case *ECMAArray:
		src = &m.orderedMap
	case *Object:
		src = &m.orderedMap
	default:
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %v", value, to)
	}

	out := reflect.MakeMapWithSize(to, src.Len())
	var err error
	src.Range(func(key string, v any) bool {
		var kv, ev reflect.Value
		kv, err = convertKey(key, to.Key())
		if err != nil {
			return false
		}
		ev, err = convert(reg, v, to.Elem())
		if err != nil {
			err = fmt.Errorf("key %q: %w", key, err)
			return false
		}
		out.SetMapIndex(kv, ev)
		return true
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func convertKey(key string, to reflect.Type) (reflect.Value, error) {
	if to.Kind() == reflect.String {
		return reflect.ValueOf(key).Convert(to), nil
	}
	return convertNumber(reflect.ValueOf(key), to)
}

// objectToStruct applies the members of o to a new *T, for structs decoded as Objects because their class isn't registered.
func objectToStruct(reg *Registry, o *Object, ty reflect.Type) (reflect.Value, error) {
	a := reg.AdapterFor(ty)
	if a == nil {
		return reflect.Value{}, fmt.Errorf("%v has no adapter", ty)
	}
	ptr := a.New()
	var err error
	o.Range(func(key string, v any) bool {
		err = a.Set(ptr, key, v)
		return err == nil
	})
	if err != nil {
		return reflect.Value{}, err
	}

	pv := reflect.ValueOf(ptr)
	if pv.Type() != reflect.PointerTo(ty) {
		return reflect.Value{}, fmt.Errorf("adapter for %v returned %v", ty, pv.Type())
	}
	return pv, nil
}
