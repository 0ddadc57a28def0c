// Package logging builds the zerolog logger shared by every component.
//
// Human-readable lines go to stderr, colored when term allows it. With
// --log, the same events are also appended to a file as JSON lines.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/config"
	"github.com/backmassage/framecopy/internal/term"
)

// Logger is the base logger plus the log file it may own.
type Logger struct {
	zerolog.Logger

	mu   sync.Mutex
	file *os.File
}

// NewLogger configures the level and writers from cfg. Console output goes
// to stderr. Call Close when done if cfg.LogFile was set.
func NewLogger(cfg *config.Config, stderr io.Writer) (*Logger, error) {
	console := zerolog.ConsoleWriter{
		Out:        stderr,
		NoColor:    !term.ColorEnabled(cfg.ColorMode, stderr),
		TimeFormat: "2006-01-02 15:04:05",
	}

	l := &Logger{}
	var w io.Writer = console
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.MultiLevelWriter(console, f)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l.Logger = zerolog.New(w).Level(ParseLevel(cfg.LogLevel)).With().Timestamp().Logger()
	return l, nil
}

// ParseLevel maps a configured level onto zerolog's. Unknown values mean info.
func ParseLevel(level config.LogLevel) zerolog.Level {
	switch level {
	case config.LevelDebug:
		return zerolog.DebugLevel
	case config.LevelWarn:
		return zerolog.WarnLevel
	case config.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a child logger annotated with the component name.
func (l *Logger) WithComponent(component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
