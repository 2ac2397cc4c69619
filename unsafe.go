package amf

import (
	"reflect"
	"unsafe"
)

// fieldAt returns the settable field f of the struct at ptr.
// The offset accumulates through embedded structs, so promoted fields are reached without walking the index path,
// and without reflect's restrictions on fields promoted through unexported embedded structs.
func fieldAt(ptr unsafe.Pointer, f *structField) reflect.Value {
	return reflect.NewAt(f.ty, unsafe.Add(ptr, f.offset)).Elem()
}
