package amf

import (
	"fmt"
	"reflect"

	"github.com/stewi1014/amf/encio"
)

var (
	objectType         = reflect.TypeOf(Object{})
	errorType          = reflect.TypeOf((*error)(nil)).Elem()
	externalizableType = reflect.TypeOf((*Externalizable)(nil)).Elem()
)

// TypeAdapter maps values of a Go type to and from AMF objects.
// Adapters are registered per type with Registry.RegisterAdapter, or created by the Registry for
// *Object, errors, Externalizable types and structs.
type TypeAdapter interface {
	// ClassDefinition returns the definition v is written with.
	ClassDefinition(v any) (*ClassDefinition, error)

	// New returns a new, settable instance to decode into. It is usually a pointer.
	New() any

	// Get returns the value of member in v.
	Get(v any, member string) (any, error)

	// Set sets member of v, which was returned by New, to value.
	// Failure to apply the value must wrap encio.ErrMemberBind.
	Set(v any, member string, value any) error
}

// DynamicAdapter is implemented by adapters of dynamic types.
type DynamicAdapter interface {
	TypeAdapter

	// DynamicMembers returns the names of the members written after the sealed members.
	DynamicMembers(v any) []string
}

// objectAdapter adapts *Object.
type objectAdapter struct {
	reg *Registry
}

func asObject(v any) (*Object, error) {
	switch o := v.(type) {
	case *Object:
		if o == nil {
			return nil, encio.NewError(encio.ErrNilPointer, "nil *Object", 1)
		}
		return o, nil
	case Object:
		return &o, nil
	default:
		return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%T is not an Object", v), 1)
	}
}

func (a objectAdapter) ClassDefinition(v any) (*ClassDefinition, error) {
	o, err := asObject(v)
	if err != nil {
		return nil, err
	}
	if !o.IsTyped() {
		return anonymousDefinition, nil
	}

	build := func() (*ClassDefinition, error) {
		return &ClassDefinition{
			ClassName: o.Alias,
			Members:   o.Keys(),
		}, nil
	}

	def, err := a.reg.traits.GetOrBuild(o.Alias, build)
	if err != nil {
		return nil, err
	}

	if def.Dynamic || def.Externalizable || !sameMembers(def.Members, o.keys) {
		// Instances of one alias needn't share members.
		return build()
	}
	return def, nil
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a objectAdapter) New() any {
	return NewObject("")
}

func (a objectAdapter) Get(v any, member string) (any, error) {
	o, err := asObject(v)
	if err != nil {
		return nil, err
	}
	val, ok := o.Get(member)
	if !ok {
		return nil, encio.NewError(encio.ErrMemberBind, fmt.Sprintf("no member %q in %v", member, o.Alias), 0)
	}
	return val, nil
}

func (a objectAdapter) Set(v any, member string, value any) error {
	o, ok := v.(*Object)
	if !ok || o == nil {
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("cannot set member %q of %T", member, v), 0)
	}
	o.Set(member, value)
	return nil
}

func (a objectAdapter) DynamicMembers(v any) []string {
	o, err := asObject(v)
	if err != nil || o.IsTyped() {
		return nil
	}
	return o.keys
}

// externalizableAdapter adapts types implementing Externalizable.
// Their members are opaque; the payload is the type's own.
type externalizableAdapter struct {
	reg *Registry
	ty  reflect.Type
}

func (a externalizableAdapter) ClassDefinition(v any) (*ClassDefinition, error) {
	name := a.reg.ClassName(a.ty)
	if name == "" {
		return nil, encio.NewError(encio.ErrNoSerializer, fmt.Sprintf("externalizable %v has no class name", a.ty), 0)
	}
	return a.reg.traits.GetOrBuild(name, func() (*ClassDefinition, error) {
		return &ClassDefinition{
			ClassName:      name,
			Externalizable: true,
		}, nil
	})
}

func (a externalizableAdapter) New() any {
	return reflect.New(a.ty).Interface()
}

func (a externalizableAdapter) Get(v any, member string) (any, error) {
	return nil, encio.NewError(encio.ErrMemberBind, fmt.Sprintf("externalizable %v has no member %q", a.ty, member), 0)
}

func (a externalizableAdapter) Set(v any, member string, value any) error {
	return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("externalizable %v has no member %q", a.ty, member), 0)
}

// errorMessage is the member holding an error's message.
const errorMessage = "message"

func newErrorAdapter(reg *Registry, ty reflect.Type) *errorAdapter {
	a := &errorAdapter{
		reg: reg,
		ty:  ty,
	}
	if ty.Kind() == reflect.Struct {
		a.fields = newStructAdapter(reg, ty)
	}
	return a
}

// errorAdapter writes Go errors as typed objects with a message member,
// followed by the error's own exported fields if it is a struct.
type errorAdapter struct {
	reg    *Registry
	ty     reflect.Type
	fields *structAdapter
}

func (a *errorAdapter) ClassDefinition(v any) (*ClassDefinition, error) {
	name := a.reg.ClassName(a.ty)
	build := func() (*ClassDefinition, error) {
		members := []string{errorMessage}
		if a.fields != nil {
			for _, f := range a.fields.fields {
				if f.name != errorMessage {
					members = append(members, f.name)
				}
			}
		}
		return &ClassDefinition{
			ClassName: name,
			Members:   members,
		}, nil
	}

	if name == "" {
		return build()
	}
	return a.reg.traits.GetOrBuild(name, build)
}

func (a *errorAdapter) New() any {
	return reflect.New(a.ty).Interface()
}

func (a *errorAdapter) Get(v any, member string) (any, error) {
	if member == errorMessage {
		err, ok := v.(error)
		if !ok {
			return nil, encio.NewError(encio.ErrBadType, fmt.Sprintf("%T is not an error", v), 0)
		}
		return err.Error(), nil
	}
	if a.fields == nil {
		return nil, encio.NewError(encio.ErrMemberBind, fmt.Sprintf("no member %q in %v", member, a.ty), 0)
	}
	return a.fields.Get(v, member)
}

func (a *errorAdapter) Set(v any, member string, value any) error {
	if a.fields == nil || member == errorMessage {
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("cannot set member %q of %v", member, a.ty), 0)
	}
	return a.fields.Set(v, member, value)
}
