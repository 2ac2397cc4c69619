package amf_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
	"github.com/stewi1014/amf/encio"
)

func TestRegister(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("point", point{}))

	err := reg.Register("point", point{})
	td.CmpTrue(t, errors.Is(err, amf.ErrAlreadyRegistered), "same name and type: %v", err)
	err = reg.Register("other", &point{})
	td.CmpTrue(t, errors.Is(err, amf.ErrAlreadyRegistered), "same type: %v", err)
	err = reg.Register("point", strict{})
	td.CmpTrue(t, errors.Is(err, amf.ErrAlreadyRegistered), "same name: %v", err)
	err = reg.Register("", strict{})
	td.CmpTrue(t, errors.Is(err, encio.ErrBadType), "empty name: %v", err)

	ty, ok := reg.Resolve("point")
	td.CmpTrue(t, ok)
	td.Cmp(t, ty, reflect.TypeOf(point{}))
	td.Cmp(t, reg.ClassName(reflect.TypeOf(&point{})), "point")
	td.Cmp(t, reg.ClassName(reflect.TypeOf(strict{})), "github.com/stewi1014/amf_test.strict")
	td.Cmp(t, reg.ClassName(reflect.TypeOf(struct{}{})), "")

	_, ok = reg.Resolve("flex.messaging.io.ArrayCollection")
	td.CmpTrue(t, ok)

	_, _, err = reg.New("missing")
	td.CmpTrue(t, errors.Is(err, amf.ErrNotRegistered))
}

type tagged struct {
	Renamed  int    `amf:"renamed"`
	Skipped  int    `amf:"-"`
	ReadOnly string `amf:"ro,readonly"`
	private  int
	embedded
}

type embedded struct {
	Inner  bool
	Shadow int
}

func TestStructMembers(t *testing.T) {
	for _, accessor := range []amf.Accessor{amf.ReflectAccessor, amf.OffsetAccessor} {
		t.Run(fmt.Sprint(accessor), func(t *testing.T) {
			reg := amf.NewRegistry(&amf.RegistryConfig{Accessor: accessor})
			td.CmpNoError(t, reg.Register("tagged", tagged{}))

			def, err := reg.ClassDefinition(tagged{})
			if !td.CmpNoError(t, err) {
				return
			}
			td.Cmp(t, def.ClassName, "tagged")
			td.Cmp(t, def.Members, []string{"renamed", "ro", "Inner", "Shadow"})
			td.CmpFalse(t, def.Dynamic)

			config := &amf.Config{ObjectEncoding: amf.AMF3, Registry: reg}
			v := tagged{Renamed: 1, Skipped: 2, ReadOnly: "r", private: 3, embedded: embedded{Inner: true, Shadow: 4}}
			decoded := roundTrip(t, config, v)
			td.Cmp(t, decoded, &tagged{Renamed: 1, embedded: embedded{Inner: true, Shadow: 4}})
		})
	}
}

func TestTraitCache(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("point", point{}))

	var wg sync.WaitGroup
	defs := make([]*amf.ClassDefinition, 16)
	for i := range defs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defs[i], _ = reg.ClassDefinition(&point{})
		}(i)
	}
	wg.Wait()

	for _, def := range defs {
		td.Cmp(t, def, td.Shallow(defs[0]))
	}
	cached, ok := reg.Traits().Load("point")
	td.CmpTrue(t, ok)
	td.Cmp(t, cached, td.Shallow(defs[0]))
	td.Cmp(t, cached.Fingerprint(), (&amf.ClassDefinition{ClassName: "point", Members: []string{"X", "Y"}}).Fingerprint())
}

func TestClassDefinition(t *testing.T) {
	a := &amf.ClassDefinition{ClassName: "a", Members: []string{"x"}}
	testCases := []struct {
		desc  string
		other *amf.ClassDefinition
		equal bool
	}{
		{desc: "same", other: &amf.ClassDefinition{ClassName: "a", Members: []string{"x"}}, equal: true},
		{desc: "name", other: &amf.ClassDefinition{ClassName: "b", Members: []string{"x"}}},
		{desc: "members", other: &amf.ClassDefinition{ClassName: "a", Members: []string{"y"}}},
		{desc: "member order", other: &amf.ClassDefinition{ClassName: "a", Members: []string{"x", "y"}}},
		{desc: "dynamic", other: &amf.ClassDefinition{ClassName: "a", Members: []string{"x"}, Dynamic: true}},
		{desc: "externalizable", other: &amf.ClassDefinition{ClassName: "a", Members: []string{"x"}, Externalizable: true}},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			td.Cmp(t, a.Equal(tC.other), tC.equal)
			if tC.equal {
				td.Cmp(t, a.Fingerprint(), tC.other.Fingerprint())
			}
		})
	}
}

// celsius is written as an object holding its value in fahrenheit.
type celsius float64

type celsiusAdapter struct{}

func (celsiusAdapter) ClassDefinition(v any) (*amf.ClassDefinition, error) {
	return &amf.ClassDefinition{ClassName: "temp", Members: []string{"f"}}, nil
}

func (celsiusAdapter) New() any { return new(celsius) }

func (celsiusAdapter) Get(v any, member string) (any, error) {
	switch c := v.(type) {
	case celsius:
		return float64(c)*9/5 + 32, nil
	case *celsius:
		return float64(*c)*9/5 + 32, nil
	}
	return nil, encio.ErrBadType
}

func (celsiusAdapter) Set(v any, member string, value any) error {
	f, ok := value.(float64)
	if !ok || member != "f" {
		return encio.ErrMemberBind
	}
	*v.(*celsius) = celsius((f - 32) * 5 / 9)
	return nil
}

func TestRegisterAdapter(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("temp", celsius(0)))
	td.CmpNoError(t, reg.RegisterAdapter(celsius(0), celsiusAdapter{}))
	err := reg.RegisterAdapter(celsius(0), celsiusAdapter{})
	td.CmpTrue(t, errors.Is(err, amf.ErrAlreadyRegistered))

	config := &amf.Config{Registry: reg}
	encoded := encodeValue(t, config, celsius(100))
	td.Cmp(t, encoded, []byte{
		0x10, 0x00, 0x04, 't', 'e', 'm', 'p',
		0x00, 0x01, 'f', 0x00, 0x40, 0x6a, 0x80, 0, 0, 0, 0, 0, // 212
		0x00, 0x00, 0x09,
	})

	c := new(celsius)
	*c = 100
	td.Cmp(t, decodeValue(t, config, encoded), c)
}

type remoteError struct {
	Code int
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("remote error %v", e.Code)
}

func TestErrorValues(t *testing.T) {
	reg := amf.NewRegistry(nil)
	config := quiet(amf.Config{Registry: reg, ObjectEncoding: amf.AMF3})

	decoded := roundTrip(t, config, &remoteError{Code: 3})
	o, ok := decoded.(*amf.Object)
	if !td.CmpTrue(t, ok, "got %T", decoded) {
		return
	}
	td.Cmp(t, o.Alias, "github.com/stewi1014/amf_test.remoteError")
	td.Cmp(t, o.Keys(), []string{"message", "Code"})
	msg, _ := o.Get("message")
	td.Cmp(t, msg, "remote error 3")

	td.CmpNoError(t, reg.Register("remoteError", remoteError{}))
	config.FaultTolerant = true
	decoded = roundTrip(t, config, &remoteError{Code: 3})
	td.Cmp(t, decoded, &remoteError{Code: 3})
}

func TestArrayCollection(t *testing.T) {
	for _, encoding := range []amf.ObjectEncoding{amf.AMF0, amf.AMF3} {
		t.Run(encoding.String(), func(t *testing.T) {
			config := &amf.Config{ObjectEncoding: encoding}
			c := &amf.ArrayCollection{Source: []any{"a", true}}
			td.Cmp(t, roundTrip(t, config, c), c)

			p := &amf.ObjectProxy{Object: amf.NewObject("")}
			p.Object.Set("k", "v")
			td.Cmp(t, roundTrip(t, config, p), p)
		})
	}

	t.Run("encoding", func(t *testing.T) {
		encoded := encodeValue(t, &amf3Config, &amf.ArrayCollection{Source: []any{}})
		name := "flex.messaging.io.ArrayCollection"
		want := append([]byte{0x0a, 0x07, byte(len(name)<<1 | 1)}, name...)
		want = append(want, 0x09, 0x01, 0x01)
		td.Cmp(t, encoded, want)
	})
}

func TestWireTraitsNotCached(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("point", point{}))
	config := &amf.Config{ObjectEncoding: amf.AMF3, Registry: reg}

	// The peer's point has only X.
	decoded := decodeValue(t, config, []byte{
		0x0a, 0x13, 0x0b, 'p', 'o', 'i', 'n', 't', 0x03, 'X',
		0x04, 0x07,
	})
	td.Cmp(t, decoded, &point{X: 7})

	_, ok := reg.Traits().Load("point")
	td.CmpFalse(t, ok)

	def, err := reg.ClassDefinition(&point{})
	td.CmpNoError(t, err)
	td.Cmp(t, def.Members, []string{"X", "Y"})
	cached, ok := reg.Traits().Load("point")
	td.CmpTrue(t, ok)
	td.Cmp(t, cached, td.Shallow(def))

	again, _ := reg.ClassDefinition(point{})
	td.Cmp(t, again, td.Shallow(def))
}
