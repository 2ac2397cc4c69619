package amf

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/stewi1014/amf/encio"
)

type structField struct {
	name     string
	index    []int
	offset   uintptr
	ty       reflect.Type
	readOnly bool
	depth    int
}

// structFields returns the members of a struct type in declaration order.
// Exported fields are included unless tagged "-". Embedded structs without a name tag have their fields promoted,
// with shallower fields hiding deeper ones of the same name as Go does.
func structFields(ty reflect.Type, tagName string) []structField {
	var fields []structField
	collectFields(ty, tagName, nil, 0, 0, &fields)

	// resolve promoted name conflicts
	best := make(map[string]int, len(fields))
	ambiguous := make(map[string]bool)
	for i, f := range fields {
		j, ok := best[f.name]
		switch {
		case !ok || f.depth < fields[j].depth:
			best[f.name] = i
			delete(ambiguous, f.name)
		case f.depth == fields[j].depth:
			ambiguous[f.name] = true
		}
	}

	out := fields[:0:0]
	for i, f := range fields {
		if best[f.name] == i && !ambiguous[f.name] {
			out = append(out, f)
		}
	}
	return out
}

func collectFields(ty reflect.Type, tagName string, index []int, offset uintptr, depth int, fields *[]structField) {
	for i := 0; i < ty.NumField(); i++ {
		field := ty.Field(i)

		name, opts, tagged := strings.Cut(field.Tag.Get(tagName), ",")
		if name == "-" && !tagged {
			// Tag says skip
			continue
		}

		fieldIndex := append(append(make([]int, 0, len(index)+1), index...), i)

		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, tagName, fieldIndex, offset+field.Offset, depth+1, fields)
			continue
		}

		if !unicode.IsUpper([]rune(field.Name)[0]) {
			// Not exported
			continue
		}

		if name == "" {
			name = field.Name
		}

		*fields = append(*fields, structField{
			name:     name,
			index:    fieldIndex,
			offset:   offset + field.Offset,
			ty:       field.Type,
			readOnly: opts == "readonly",
			depth:    depth,
		})
	}
}

func newStructAdapter(reg *Registry, ty reflect.Type) *structAdapter {
	if ty.Kind() != reflect.Struct {
		panic(encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not a struct", ty), 0))
	}

	a := &structAdapter{
		reg:      reg,
		ty:       ty,
		accessor: reg.config.Accessor,
		fields:   structFields(ty, reg.config.StructTag),
	}

	a.byName = make(map[string]int, len(a.fields))
	a.members = make([]string, len(a.fields))
	for i, f := range a.fields {
		a.byName[f.name] = i
		a.members[i] = f.name
	}

	return a
}

// structAdapter writes exported struct fields as sealed members.
// Values are written from T or *T, and decoded into *T.
type structAdapter struct {
	reg      *Registry
	ty       reflect.Type
	accessor Accessor
	fields   []structField
	byName   map[string]int
	members  []string
}

func (a *structAdapter) definition(name string) *ClassDefinition {
	members := make([]string, len(a.members))
	copy(members, a.members)
	return &ClassDefinition{
		ClassName: name,
		Members:   members,
	}
}

// ClassDefinition implements TypeAdapter.
// The definition is cached by class name; if another layout was cached under the name first, a private definition is returned.
func (a *structAdapter) ClassDefinition(v any) (*ClassDefinition, error) {
	name := a.reg.ClassName(a.ty)
	if name == "" {
		return a.definition(""), nil
	}

	def, err := a.reg.traits.GetOrBuild(name, func() (*ClassDefinition, error) {
		return a.definition(name), nil
	})
	if err != nil {
		return nil, err
	}

	if def.Dynamic || def.Externalizable || !sameMembers(def.Members, a.members) {
		return a.definition(name), nil
	}
	return def, nil
}

// New implements TypeAdapter.
func (a *structAdapter) New() any {
	return reflect.New(a.ty).Interface()
}

// value returns the struct held by v.
func (a *structAdapter) value(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return rv, encio.NewError(encio.ErrNilPointer, fmt.Sprintf("nil %v", rv.Type()), 1)
		}
		rv = rv.Elem()
	}
	if rv.Type() != a.ty {
		return rv, encio.NewError(encio.ErrBadType, fmt.Sprintf("%v is not %v", rv.Type(), a.ty), 1)
	}
	return rv, nil
}

func (a *structAdapter) field(rv reflect.Value, f *structField) reflect.Value {
	if a.accessor == OffsetAccessor {
		if !rv.CanAddr() {
			c := reflect.New(a.ty).Elem()
			c.Set(rv)
			rv = c
		}
		return fieldAt(rv.Addr().UnsafePointer(), f)
	}
	return rv.FieldByIndex(f.index)
}

// Get implements TypeAdapter.
func (a *structAdapter) Get(v any, member string) (any, error) {
	rv, err := a.value(v)
	if err != nil {
		return nil, err
	}
	i, ok := a.byName[member]
	if !ok {
		return nil, encio.NewError(encio.ErrMemberBind, fmt.Sprintf("no member %q in %v", member, a.ty), 0)
	}
	return a.field(rv, &a.fields[i]).Interface(), nil
}

// Set implements TypeAdapter.
// Read-only members are left untouched.
func (a *structAdapter) Set(v any, member string, value any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != a.ty {
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("cannot set members of %T, want *%v", v, a.ty), 0)
	}

	i, ok := a.byName[member]
	if !ok {
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("no member %q in %v", member, a.ty), 0)
	}
	f := &a.fields[i]
	if f.readOnly {
		return nil
	}

	converted, err := convert(a.reg, value, f.ty)
	if err != nil {
		return encio.NewError(encio.ErrMemberBind, fmt.Sprintf("member %q of %v: %v", member, a.ty, err), 0)
	}

	a.field(rv.Elem(), f).Set(converted)
	return nil
}
