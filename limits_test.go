package amf_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"runtime"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
	"github.com/stewi1014/amf/encio"
)

func u29(n uint32) []byte {
	buff := make([]byte, 4)
	return buff[:encio.EncodeU29(buff, n)]
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// A declared length is not allocated before the data behind it arrives.
func TestForgedLengths(t *testing.T) {
	const count = 20_000_000
	strictCount := make([]byte, 4)
	binary.BigEndian.PutUint32(strictCount, count)

	testCases := []struct {
		desc     string
		encoding amf.ObjectEncoding
		data     []byte
	}{
		{desc: "AMF3 array", encoding: amf.AMF3, data: concat([]byte{0x09}, u29(count<<1|1), []byte{0x01})},
		{desc: "AMF3 byte array", encoding: amf.AMF3, data: concat([]byte{0x0c}, u29(count<<1|1), []byte{0})},
		{desc: "AMF3 string", encoding: amf.AMF3, data: concat([]byte{0x06}, u29(count<<1|1), []byte{'a'})},
		{desc: "AMF3 trait members", encoding: amf.AMF3, data: concat([]byte{0x0a}, u29(count<<4|0x03), []byte{0x01})},
		{desc: "int vector", encoding: amf.AMF3, data: concat([]byte{0x0d}, u29(count<<1|1), []byte{0x00})},
		{desc: "double vector", encoding: amf.AMF3, data: concat([]byte{0x0f}, u29(count<<1|1), []byte{0x00})},
		{desc: "object vector", encoding: amf.AMF3, data: concat([]byte{0x10}, u29(count<<1|1), []byte{0x00, 0x01})},
		{desc: "AMF0 strict array", encoding: amf.AMF0, data: concat([]byte{0x0a}, strictCount)},
		{desc: "AMF0 long string", encoding: amf.AMF0, data: concat([]byte{0x0c}, strictCount, []byte{'a'})},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			config := &amf.Config{ObjectEncoding: tC.encoding}

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := amf.NewDecoder(bytes.NewReader(tC.data), config).DecodeValue()
			runtime.ReadMemStats(&after)

			td.CmpTrue(t, errors.Is(err, io.ErrUnexpectedEOF), "%v", err)
			td.Cmp(t, after.TotalAlloc-before.TotalAlloc, td.Lt(uint64(1<<20)), "bytes allocated")
		})
	}
}

func TestLongArray(t *testing.T) {
	const n = 3000
	arr := make([]any, n)
	for i := range arr {
		arr[i] = i
	}

	for _, encoding := range []amf.ObjectEncoding{amf.AMF0, amf.AMF3} {
		t.Run(encoding.String(), func(t *testing.T) {
			config := &amf.Config{ObjectEncoding: encoding}
			decoded, ok := roundTrip(t, config, []any{arr, arr}).([]any)
			if !td.CmpTrue(t, ok) {
				return
			}
			td.Cmp(t, decoded[0], td.Len(n))
			td.Cmp(t, decoded[1], td.Shallow(decoded[0]))
		})
	}
}
