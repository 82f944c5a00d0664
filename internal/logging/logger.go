// Package logging builds the zerolog logger shared by the CLI, the TUI and the controls.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// TimeFormat is the console timestamp layout.
const TimeFormat = "15:04:05"

// New returns a console logger writing to w at level. A nil writer discards output.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	if w == nil {
		return zerolog.Nop(), nil
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: TimeFormat,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}).Level(lvl).With().Timestamp().Logger(), nil
}

// OpenFile opens path for appending log lines. The caller closes it.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
