package amf

import (
	"log/slog"
	"time"

	"github.com/stewi1014/amf/encio"
)

// ObjectEncoding is the AMF version used for values.
type ObjectEncoding uint8

const (
	// AMF0 is the original encoding.
	AMF0 ObjectEncoding = 0
	// AMF3 adds string and trait references, and the compact U29 integer.
	AMF3 ObjectEncoding = 3
)

func (e ObjectEncoding) String() string {
	if e == AMF3 {
		return "AMF3"
	}
	return "AMF0"
}

// TimezoneCompensation selects how dates are adjusted on their way through the codec.
type TimezoneCompensation uint8

const (
	// TimezoneNone writes dates as UTC instants and reads them back as UTC.
	// The AMF0 timezone field is written as zero.
	TimezoneNone TimezoneCompensation = iota

	// TimezoneAuto applies the AMF0 timezone offset sent by the peer to decoded dates,
	// returning a wall clock reading in an unnamed zero-offset zone. It has no effect on AMF3 dates.
	TimezoneAuto

	// TimezoneServer converts decoded dates to Config.Location.
	TimezoneServer

	// TimezoneIgnoreSourceKind takes the wall clock of encoded dates as already being UTC,
	// skipping conversion of their instant.
	TimezoneIgnoreSourceKind
)

// Config defines configuration for Encoders and Decoders.
// The zero value, or a nil *Config, is usable.
type Config struct {
	// Registry maps class names to types and types to adapters.
	// If nil, DefaultRegistry is used.
	Registry *Registry

	// ObjectEncoding is used by EncodeValue and DecodeValue.
	// Messages use the encoding implied by their version.
	ObjectEncoding ObjectEncoding

	// TimezoneCompensation is applied to every date read or written.
	TimezoneCompensation TimezoneCompensation

	// Location is the local time zone for timezone compensation.
	// If nil, time.Local is used.
	Location *time.Location

	// FaultTolerant lets decoding continue past members that can't be applied to their object.
	// The failure is logged and available from LastError.
	FaultTolerant bool

	// Logger receives warnings about degraded decoding.
	// If nil, warnings are written to encio.Warnings.
	Logger *slog.Logger
}

func (c *Config) copyAndFill() *Config {
	config := new(Config)
	if c != nil {
		*config = *c
	}

	if config.Registry == nil {
		config.Registry = DefaultRegistry
	}

	if config.Location == nil {
		config.Location = time.Local
	}

	if config.Logger == nil {
		config.Logger = encio.NewLogger()
	}

	return config
}
