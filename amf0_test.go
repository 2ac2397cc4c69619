package amf_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
	"github.com/stewi1014/amf/encio"
)

func TestAMF0Primitives(t *testing.T) {
	testCases := []struct {
		desc    string
		value   any
		encoded []byte
		decoded any
	}{
		{desc: "number", value: 42, encoded: []byte{0x00, 0x40, 0x45, 0, 0, 0, 0, 0, 0}, decoded: 42.0},
		{desc: "float32", value: float32(0.5), encoded: []byte{0x00, 0x3f, 0xe0, 0, 0, 0, 0, 0, 0}, decoded: 0.5},
		{desc: "true", value: true, encoded: []byte{0x01, 0x01}, decoded: true},
		{desc: "false", value: false, encoded: []byte{0x01, 0x00}, decoded: false},
		{desc: "string", value: "hi", encoded: []byte{0x02, 0x00, 0x02, 'h', 'i'}, decoded: "hi"},
		{desc: "null", value: nil, encoded: []byte{0x05}, decoded: nil},
		{desc: "undefined", value: amf.Undefined{}, encoded: []byte{0x06}, decoded: amf.Undefined{}},
		{desc: "xml", value: amf.XML("<a/>"), encoded: []byte{0x0f, 0, 0, 0, 4, '<', 'a', '/', '>'}, decoded: amf.XMLDocument("<a/>")},
		{desc: "strict array", value: []string{"a"}, encoded: []byte{0x0a, 0, 0, 0, 1, 0x02, 0x00, 0x01, 'a'}, decoded: []any{"a"}},
		{
			desc:    "ecma array",
			value:   map[string]bool{"k": true},
			encoded: []byte{0x08, 0, 0, 0, 1, 0x00, 0x01, 'k', 0x01, 0x01, 0x00, 0x00, 0x09},
			decoded: func() *amf.ECMAArray {
				arr := amf.NewECMAArray()
				arr.Set("k", true)
				return arr
			}(),
		},
		{
			desc:    "byte slice",
			value:   []byte{7},
			encoded: []byte{0x11, 0x0c, 0x03, 0x07},
			decoded: amf.NewByteArray([]byte{7}),
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			encoded := encodeValue(t, nil, tC.value)
			td.Cmp(t, encoded, tC.encoded)
			td.Cmp(t, decodeValue(t, nil, encoded), tC.decoded)
		})
	}
}

func TestAMF0LongString(t *testing.T) {
	s := strings.Repeat("a", 0x10000)
	encoded := encodeValue(t, nil, s)
	td.Cmp(t, encoded[:5], []byte{0x0c, 0x00, 0x01, 0x00, 0x00})
	td.Cmp(t, decodeValue(t, nil, encoded), s)
}

func TestAMF0Objects(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("point", point{}))
	config := quiet(amf.Config{Registry: reg})

	t.Run("anonymous", func(t *testing.T) {
		o := amf.NewObject("")
		o.Set("a", 1.0)
		encoded := encodeValue(t, config, o)
		td.Cmp(t, encoded, []byte{
			0x03,
			0x00, 0x01, 'a', 0x00, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0,
			0x00, 0x00, 0x09,
		})
		td.Cmp(t, decodeValue(t, config, encoded), o)
	})

	t.Run("typed", func(t *testing.T) {
		encoded := encodeValue(t, config, point{X: 1, Y: 2})
		td.Cmp(t, encoded, []byte{
			0x10, 0x00, 0x05, 'p', 'o', 'i', 'n', 't',
			0x00, 0x01, 'X', 0x00, 0x3f, 0xf0, 0, 0, 0, 0, 0, 0,
			0x00, 0x01, 'Y', 0x00, 0x40, 0x00, 0, 0, 0, 0, 0, 0,
			0x00, 0x00, 0x09,
		})
		td.Cmp(t, decodeValue(t, config, encoded), &point{X: 1, Y: 2})
	})

	t.Run("unregistered class", func(t *testing.T) {
		data := []byte{
			0x10, 0x00, 0x03, 'a', '.', 'B',
			0x00, 0x01, 'n', 0x05,
			0x00, 0x00, 0x09,
		}
		want := amf.NewObject("a.B")
		want.Set("n", nil)
		td.Cmp(t, decodeValue(t, config, data), want)
	})

	t.Run("shared", func(t *testing.T) {
		shared := amf.NewObject("")
		encoded := encodeValue(t, config, []any{shared, shared})
		td.Cmp(t, encoded, []byte{
			0x0a, 0, 0, 0, 2,
			0x03, 0x00, 0x00, 0x09,
			0x07, 0x00, 0x01, // reference to object 1; the array is 0
		})

		decoded := decodeValue(t, config, encoded).([]any)
		td.Cmp(t, decoded[1], td.Shallow(decoded[0]))
	})

	t.Run("cycle", func(t *testing.T) {
		o := amf.NewObject("")
		o.Set("self", o)
		encoded := encodeValue(t, config, o)
		td.Cmp(t, encoded, []byte{
			0x03,
			0x00, 0x04, 's', 'e', 'l', 'f', 0x07, 0x00, 0x00,
			0x00, 0x00, 0x09,
		})

		decoded := decodeValue(t, config, encoded).(*amf.Object)
		self, _ := decoded.Get("self")
		td.Cmp(t, self, td.Shallow(decoded))
	})
}

func TestAMF0Errors(t *testing.T) {
	testCases := []struct {
		desc string
		data []byte
		err  error
	}{
		{desc: "movieclip", data: []byte{0x04}, err: encio.ErrUnsupportedMarker},
		{desc: "recordset", data: []byte{0x0e}, err: encio.ErrUnsupportedMarker},
		{desc: "unsupported", data: []byte{0x0d}, err: encio.ErrUnsupportedMarker},
		{desc: "stray object end", data: []byte{0x09}, err: encio.ErrUnsupportedMarker},
		{desc: "reference", data: []byte{0x07, 0x00, 0x05}, err: encio.ErrInvalidReference},
		{desc: "missing object end", data: []byte{0x03, 0x00, 0x00, 0x05}, err: encio.ErrFormat},
		{desc: "dictionary in switch", data: []byte{0x11, 0x11}, err: encio.ErrUnsupportedMarker},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := amf.NewDecoder(bytes.NewReader(tC.data), nil).DecodeValue()
			td.CmpTrue(t, errors.Is(err, tC.err), "got %v", err)
		})
	}

	t.Run("empty member name", func(t *testing.T) {
		err := amf.NewEncoder(new(bytes.Buffer), nil).EncodeValue(map[string]int{"": 1})
		td.CmpTrue(t, errors.Is(err, encio.ErrFormat), "got %v", err)
	})

	t.Run("no serializer", func(t *testing.T) {
		err := amf.NewEncoder(new(bytes.Buffer), nil).EncodeValue(make(chan int))
		td.CmpTrue(t, errors.Is(err, encio.ErrNoSerializer), "got %v", err)
	})
}
