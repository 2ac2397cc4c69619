package amf_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/amf"
)

// quiet returns config with a logger that discards warnings.
func quiet(config amf.Config) *amf.Config {
	config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &config
}

func encodeValue(t testing.TB, config *amf.Config, v any) []byte {
	t.Helper()
	buff := new(bytes.Buffer)
	if !td.CmpNoError(t, amf.NewEncoder(buff, config).EncodeValue(v)) {
		t.FailNow()
	}
	return buff.Bytes()
}

func decodeValue(t testing.TB, config *amf.Config, data []byte) any {
	t.Helper()
	v, err := amf.NewDecoder(bytes.NewReader(data), config).DecodeValue()
	if !td.CmpNoError(t, err) {
		t.FailNow()
	}
	return v
}

func roundTrip(t testing.TB, config *amf.Config, v any) any {
	t.Helper()
	return decodeValue(t, config, encodeValue(t, config, v))
}
