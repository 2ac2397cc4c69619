package amf

import (
	"math"
	"time"
)

// dateToWire returns the milliseconds since the Unix epoch and AMF0 timezone offset, in minutes, that t is written with.
func (c *Config) dateToWire(t time.Time) (ms float64, tz int16) {
	if c.TimezoneCompensation == TimezoneIgnoreSourceKind {
		// The wall clock is taken to be UTC already.
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}

	ms = float64(t.Unix())*1000 + float64(t.Nanosecond()/int(time.Millisecond))
	if c.TimezoneCompensation != TimezoneNone {
		_, offset := t.In(c.Location).Zone()
		tz = int16(offset / 60)
	}
	return ms, tz
}

// dateFromWire returns the time written as ms milliseconds since the Unix epoch.
// tz is the AMF0 timezone offset in minutes, and is applied only if hasTZ.
func (c *Config) dateFromWire(ms float64, tz int16, hasTZ bool) time.Time {
	var t time.Time
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		t = time.Unix(0, 0)
	} else {
		sec, frac := math.Modf(ms / 1000)
		t = time.Unix(int64(sec), int64(math.Round(frac*1000))*int64(time.Millisecond))
	}
	t = t.UTC()

	switch c.TimezoneCompensation {
	case TimezoneAuto:
		if hasTZ {
			t = t.Add(time.Duration(tz) * time.Minute)
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), unnamedZone)
		}
	case TimezoneServer:
		t = t.In(c.Location)
	}
	return t
}

// unnamedZone holds wall clock readings whose zone is unknown.
var unnamedZone = time.FixedZone("", 0)
