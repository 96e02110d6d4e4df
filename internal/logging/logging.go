// Package logging opens kickoff's JSON log file.
//
// The terminal belongs to the UI, so logs only ever go to a file. Each line is
// one zerolog JSON object; the log view reads them back through logtail.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ComponentKey names the field identifying the emitting package.
const ComponentKey = "component"

// ParseLevel maps a config level name onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Open creates the log file's directory and returns a logger appending to it.
// The returned closer releases the file.
func Open(path, level string) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), io.NopCloser(nil), fmt.Errorf("open log file: %w", err)
	}
	return New(file, level), file, nil
}

// Component derives a logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorFieldName = "err"
}
