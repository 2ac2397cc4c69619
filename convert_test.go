package amf_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
	"github.com/stewi1014/amf/encio"
)

type inner struct {
	V string
}

type record struct {
	Count  int
	Tags   []string
	Scores map[string]float64
	Index  map[int]bool
	Inner  *inner
	Value  inner
	Fixed  [2]int
	Raw    []byte
	Label  string
	Ptr    *int
	Unset  any
	Vector []float32
}

func TestConvert(t *testing.T) {
	in := amf.NewObject("record")
	in.Set("Count", 2.0)
	in.Set("Tags", []any{"a", "b"})
	in.Set("Scores", map[string]any{"x": 1.5})
	in.Set("Index", map[string]any{"3": true})
	nested := amf.NewObject("")
	nested.Set("V", "nested")
	in.Set("Inner", nested)
	in.Set("Value", nested)
	in.Set("Fixed", []any{1, 2})
	in.Set("Raw", []byte{1, 2, 3})
	in.Set("Label", 7)
	in.Set("Ptr", 5)
	in.Set("Unset", nil)
	in.Set("Vector", &amf.DoubleVector{Items: []float64{0.5}})

	encoded := encodeValue(t, &amf3Config, in)

	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("record", record{}))
	decoded := decodeValue(t, &amf.Config{ObjectEncoding: amf.AMF3, Registry: reg}, encoded)

	five := 5
	td.Cmp(t, decoded, &record{
		Count:  2,
		Tags:   []string{"a", "b"},
		Scores: map[string]float64{"x": 1.5},
		Index:  map[int]bool{3: true},
		Inner:  &inner{V: "nested"},
		Value:  inner{V: "nested"},
		Fixed:  [2]int{1, 2},
		Raw:    []byte{1, 2, 3},
		Label:  "7",
		Ptr:    &five,
		Vector: []float32{0.5},
	})
}

func TestConvertErrors(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("record", record{}))
	config := quiet(amf.Config{Registry: reg})

	testCases := []struct {
		desc   string
		member string
		value  any
	}{
		{desc: "fraction", member: "Count", value: 1.5},
		{desc: "string number", member: "Count", value: "many"},
		{desc: "bool to string", member: "Label", value: true},
		{desc: "too many items", member: "Fixed", value: []any{1, 2, 3}},
		{desc: "bad item", member: "Tags", value: []any{"a", false}},
		{desc: "bad key", member: "Index", value: map[string]any{"x": true}},
		{desc: "no member", member: "Missing", value: 1},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			in := amf.NewObject("record")
			in.Set(tC.member, tC.value)
			encoded := encodeValue(t, config, in)

			config.FaultTolerant = false
			_, err := amf.NewDecoder(bytes.NewReader(encoded), config).DecodeValue()
			td.CmpTrue(t, errors.Is(err, encio.ErrMemberBind), "%v", err)

			config.FaultTolerant = true
			dec := amf.NewDecoder(bytes.NewReader(encoded), config)
			v, err := dec.DecodeValue()
			td.CmpNoError(t, err)
			td.Cmp(t, v, &record{})
			td.CmpTrue(t, errors.Is(dec.LastError(), encio.ErrMemberBind))
		})
	}
}
