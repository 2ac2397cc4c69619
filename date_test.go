package amf_test

import (
	"testing"
	"time"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
)

// 2020-01-02T03:04:05Z
var (
	testDate     = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	testDateWire = []byte{0x42, 0x76, 0xf6, 0x43, 0x5c, 0xc8, 0x80, 0x00}
)

func TestAMF0Dates(t *testing.T) {
	plusOne := time.FixedZone("plus one", 3600)

	testCases := []struct {
		desc     string
		config   amf.Config
		value    time.Time
		encoded  []byte
		want     time.Time
		location string
	}{
		{
			desc:     "none",
			value:    testDate.In(plusOne),
			encoded:  append(append([]byte{0x0b}, testDateWire...), 0x00, 0x00),
			want:     testDate,
			location: "UTC",
		},
		{
			desc:     "server",
			config:   amf.Config{TimezoneCompensation: amf.TimezoneServer, Location: plusOne},
			value:    testDate,
			encoded:  append(append([]byte{0x0b}, testDateWire...), 0x00, 0x3c),
			want:     testDate,
			location: "plus one",
		},
		{
			desc:     "ignore source kind",
			config:   amf.Config{TimezoneCompensation: amf.TimezoneIgnoreSourceKind, Location: time.UTC},
			value:    time.Date(2020, 1, 2, 3, 4, 5, 0, plusOne),
			encoded:  append(append([]byte{0x0b}, testDateWire...), 0x00, 0x00),
			want:     testDate,
			location: "UTC",
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			encoded := encodeValue(t, &tC.config, tC.value)
			td.Cmp(t, encoded, tC.encoded)

			decoded, ok := decodeValue(t, &tC.config, encoded).(time.Time)
			if !td.CmpTrue(t, ok) {
				return
			}
			td.CmpTrue(t, decoded.Equal(tC.want), "got %v, want %v", decoded, tC.want)
			td.Cmp(t, decoded.Location().String(), tC.location)
		})
	}
}

func TestAMF0DateAuto(t *testing.T) {
	// epoch, written by a peer an hour ahead of UTC
	data := []byte{0x0b, 0, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x3c}
	config := &amf.Config{TimezoneCompensation: amf.TimezoneAuto}

	decoded := decodeValue(t, config, data).(time.Time)
	td.Cmp(t, decoded.Hour(), 1)
	td.Cmp(t, decoded.Year(), 1970)

	// negative offsets are minutes west of UTC
	data[9], data[10] = 0xff, 0xc4
	decoded = decodeValue(t, config, data).(time.Time)
	td.Cmp(t, decoded.Hour(), 23)
	td.Cmp(t, decoded.Year(), 1969)
}

func TestAMF3Dates(t *testing.T) {
	encoded := encodeValue(t, &amf3Config, []any{testDate, testDate})
	want := append(append([]byte{0x09, 0x05, 0x01, 0x08, 0x01}, testDateWire...), 0x08, 0x02)
	td.Cmp(t, encoded, want)

	decoded := decodeValue(t, &amf3Config, encoded).([]any)
	for _, d := range decoded {
		td.CmpTrue(t, d.(time.Time).Equal(testDate))
	}
}

func TestDateMilliseconds(t *testing.T) {
	before := time.Date(1969, 12, 31, 23, 59, 58, 500*int(time.Millisecond), time.UTC)
	encoded := encodeValue(t, &amf3Config, before)
	td.Cmp(t, encoded, []byte{0x08, 0x01, 0xc0, 0x97, 0x70, 0, 0, 0, 0, 0})
	td.CmpTrue(t, decodeValue(t, &amf3Config, encoded).(time.Time).Equal(before))
}
