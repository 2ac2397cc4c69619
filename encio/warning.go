package encio

import (
	"io"
	"log/slog"
	"os"
)

// Warnings is where warnings are sent to.
// In many cases the codec will continue to operate with e.g. unresolvable class names or incorrectly implemented io.Writers,
// however I don't want to silently put up with things that seem worrying.
var Warnings io.Writer = os.Stderr

// NewLogger returns a structured logger writing warnings and above to Warnings.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(Warnings, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}
