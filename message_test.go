package amf_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
	"github.com/stewi1014/amf/encio"
)

func TestMessage(t *testing.T) {
	m := amf.NewMessage(amf.AMF0)
	m.AddBody("null", "/1", []any{"hello", 42, true})

	data, err := amf.Marshal(m)
	if !td.CmpNoError(t, err) {
		return
	}
	td.Cmp(t, data, []byte{
		0x00, 0x00, // version
		0x00, 0x00, // headers
		0x00, 0x01, // bodies
		0x00, 0x04, 'n', 'u', 'l', 'l',
		0x00, 0x02, '/', '1',
		0xff, 0xff, 0xff, 0xff,
		0x0a, 0x00, 0x00, 0x00, 0x03,
		0x02, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o',
		0x00, 0x40, 0x45, 0, 0, 0, 0, 0, 0,
		0x01, 0x01,
	})

	decoded, err := amf.Unmarshal(data)
	if !td.CmpNoError(t, err) {
		return
	}
	td.Cmp(t, decoded, &amf.Message{
		Version: 0,
		Headers: []*amf.Header{},
		Bodies: []*amf.Body{{
			Target:   "null",
			Response: "/1",
			Content:  []any{"hello", 42.0, true},
		}},
	})
}

func TestMessageAMF3(t *testing.T) {
	m := amf.NewMessage(amf.AMF3)
	m.AddHeader("auth", true, []any{"a"})
	m.AddBody("svc.echo", "/1", []any{"a", 1})
	m.AddBody("svc.echo", "/2", "a")

	data, err := amf.Marshal(m)
	if !td.CmpNoError(t, err) {
		return
	}
	td.Cmp(t, data, []byte{
		0x00, 0x03,
		0x00, 0x01,
		0x00, 0x04, 'a', 'u', 't', 'h', 0x01, 0xff, 0xff, 0xff, 0xff,
		0x0a, 0x00, 0x00, 0x00, 0x01, 0x02, 0x00, 0x01, 'a', // headers are AMF0
		0x00, 0x02,
		0x00, 0x08, 's', 'v', 'c', '.', 'e', 'c', 'h', 'o', 0x00, 0x02, '/', '1', 0xff, 0xff, 0xff, 0xff,
		0x11, 0x09, 0x05, 0x01, 0x06, 0x03, 'a', 0x04, 0x01,
		0x00, 0x08, 's', 'v', 'c', '.', 'e', 'c', 'h', 'o', 0x00, 0x02, '/', '2', 0xff, 0xff, 0xff, 0xff,
		0x02, 0x00, 0x01, 'a', // primitives stay AMF0
	})

	decoded, err := amf.Unmarshal(data)
	if !td.CmpNoError(t, err) {
		return
	}
	td.Cmp(t, decoded.ObjectEncoding(), amf.AMF3)
	td.Cmp(t, decoded.Headers, []*amf.Header{{Name: "auth", MustUnderstand: true, Content: []any{"a"}}})
	td.Cmp(t, decoded.Bodies[0].Content, []any{"a", int32(1)})
	td.Cmp(t, decoded.Bodies[1].Content, "a")

	h, ok := decoded.Header("auth")
	td.CmpTrue(t, ok)
	td.Cmp(t, h.Name, "auth")
	_, ok = decoded.Header("missing")
	td.CmpFalse(t, ok)
}

// Reference tables start over for every body, so a value shared between bodies is written in full in each.
func TestMessageResetsReferences(t *testing.T) {
	shared := amf.NewObject("")
	m := amf.NewMessage(amf.AMF3)
	m.AddBody("a", "/1", shared)
	m.AddBody("b", "/2", shared)

	data, err := amf.Marshal(m)
	if !td.CmpNoError(t, err) {
		return
	}
	body := []byte{0x11, 0x0a, 0x0b, 0x01, 0x01}
	td.Cmp(t, bytes.Count(data, body), 2)

	decoded, err := amf.Unmarshal(data)
	if !td.CmpNoError(t, err) {
		return
	}
	td.Cmp(t, decoded.Bodies[0].Content, amf.NewObject(""))
	td.Cmp(t, decoded.Bodies[1].Content, amf.NewObject(""))
}

func TestMessageError(t *testing.T) {
	data := []byte{
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x01,
		0x00, 0x01, 't', 0x00, 0x01, 'r', 0xff, 0xff, 0xff, 0xff,
		0x07, 0x00, 0x03,
	}

	_, err := amf.Unmarshal(data)
	var merr *amf.MessageError
	if !td.CmpTrue(t, errors.As(err, &merr), "got %v", err) {
		return
	}
	td.Cmp(t, merr.Section, amf.SectionBody)
	td.Cmp(t, merr.Index, 0)
	td.Cmp(t, merr.Name, "t")
	td.Cmp(t, merr.Response, "r")
	td.Cmp(t, merr.Offset, int64(len(data)))
	td.CmpTrue(t, errors.Is(err, encio.ErrInvalidReference))
	td.Cmp(t, err.Error(), td.Contains(`body 0 "t"`))

	t.Run("truncated", func(t *testing.T) {
		_, err := amf.Unmarshal(data[:3])
		td.CmpTrue(t, errors.As(err, &merr))
		td.Cmp(t, merr.Section, amf.SectionHeader)
	})

	t.Run("encode nil body", func(t *testing.T) {
		m := amf.NewMessage(amf.AMF0)
		m.Bodies = append(m.Bodies, nil)
		_, err := amf.Marshal(m)
		td.CmpTrue(t, errors.Is(err, encio.ErrNilPointer))
	})
}

type strict struct {
	Name  string
	Count int
}

func TestFaultTolerance(t *testing.T) {
	reg := amf.NewRegistry(nil)
	td.CmpNoError(t, reg.Register("strict", strict{}))

	// strict{Name: "n", Count: "many", Extra: true}
	body := []byte{
		0x10, 0x00, 0x06, 's', 't', 'r', 'i', 'c', 't',
		0x00, 0x04, 'N', 'a', 'm', 'e', 0x02, 0x00, 0x01, 'n',
		0x00, 0x05, 'C', 'o', 'u', 'n', 't', 0x02, 0x00, 0x04, 'm', 'a', 'n', 'y',
		0x00, 0x05, 'E', 'x', 't', 'r', 'a', 0x01, 0x01,
		0x00, 0x00, 0x09,
	}
	data := append([]byte{
		0x00, 0x00,
		0x00, 0x00,
		0x00, 0x02,
		0x00, 0x01, 'a', 0x00, 0x01, '1', 0xff, 0xff, 0xff, 0xff,
	}, body...)
	data = append(data, 0x00, 0x01, 'b', 0x00, 0x01, '2', 0xff, 0xff, 0xff, 0xff, 0x01, 0x01)

	t.Run("tolerant", func(t *testing.T) {
		dec := amf.NewDecoder(bytes.NewReader(data), quiet(amf.Config{Registry: reg, FaultTolerant: true}))
		m, err := dec.Decode()
		if !td.CmpNoError(t, err) {
			return
		}

		td.Cmp(t, m.Bodies[0].Content, &strict{Name: "n"})
		td.CmpTrue(t, errors.Is(m.Bodies[0].Err, encio.ErrMemberBind))
		td.CmpNil(t, m.Bodies[1].Err)
		td.Cmp(t, m.Bodies[1].Content, true)
		td.CmpTrue(t, errors.Is(dec.LastError(), encio.ErrMemberBind))
	})

	t.Run("strict", func(t *testing.T) {
		dec := amf.NewDecoder(bytes.NewReader(data), quiet(amf.Config{Registry: reg}))
		_, err := dec.Decode()
		td.CmpTrue(t, errors.Is(err, encio.ErrMemberBind), "got %v", err)

		var merr *amf.MessageError
		if td.CmpTrue(t, errors.As(err, &merr)) {
			td.Cmp(t, merr.Class, "strict")
		}
	})
}

func TestBody(t *testing.T) {
	testCases := []struct {
		desc      string
		target    string
		empty     bool
		recordset bool
		args      string
		typeName  string
		method    string
		debug     bool
		describe  bool
	}{
		{desc: "call", target: "org.Service.echo", typeName: "org.Service", method: "echo"},
		{desc: "null", target: "null", empty: true},
		{desc: "empty", target: "", empty: true},
		{desc: "response", target: "/1/onResult"},
		{desc: "debug", target: "/1/onDebugEvents", debug: true},
		{desc: "describe", target: "org.Service.describeService", typeName: "org.Service", method: "describeService", describe: true},
		{
			desc:      "recordset",
			target:    "rs://7/org.Service.list.1",
			recordset: true,
			args:      "7",
			typeName:  "org.Service",
			method:    "list",
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			b := &amf.Body{Target: tC.target}
			td.Cmp(t, b.IsEmptyTarget(), tC.empty)
			td.Cmp(t, b.IsRecordsetDelivery(), tC.recordset)
			td.Cmp(t, b.RecordsetArgs(), tC.args)
			td.Cmp(t, b.TypeName(), tC.typeName)
			td.Cmp(t, b.Method(), tC.method)
			td.Cmp(t, b.IsDebug(), tC.debug)
			td.Cmp(t, b.IsDescribeService(), tC.describe)
		})
	}

	t.Run("parameters", func(t *testing.T) {
		td.Cmp(t, (&amf.Body{Target: "a.b", Content: []any{1, 2}}).ParameterList(), []any{1, 2})
		td.Cmp(t, (&amf.Body{Target: "a.b", Content: "x"}).ParameterList(), []any{"x"})
		td.Cmp(t, (&amf.Body{Target: "a.b", Content: &amf.ArrayCollection{Source: []any{3}}}).ParameterList(), []any{3})
		td.Cmp(t, (&amf.Body{Target: "null", Content: "x"}).ParameterList(), []any{})
		td.Cmp(t, (&amf.Body{Target: "a.b"}).Call(), "a.b")
	})
}

func TestFault(t *testing.T) {
	status := amf.NewObject("")
	status.Set("code", "Server.Error")
	status.Set("description", "it broke")
	status.Set("details", 7.0)
	status.Set("rootcause", "disk")

	f := amf.NewFault(status)
	td.Cmp(t, f.Code, "Server.Error")
	td.Cmp(t, f.Description, "it broke")
	td.Cmp(t, f.Details, "")
	td.Cmp(t, f.RootCause, "disk")
	td.Cmp(t, f.Content, td.Shallow(status))
	td.Cmp(t, f.Error(), "amf: remote fault Server.Error: it broke")

	td.Cmp(t, amf.NewFault("x").Error(), "amf: remote fault")
}
