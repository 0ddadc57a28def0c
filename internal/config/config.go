// Package config holds runtime configuration: defaults, the optional YAML
// file, environment overrides, CLI flag binding, and validation.
//
// Precedence, lowest first: DefaultConfig, config file, environment, flags.
package config

import (
	"errors"
	"fmt"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output in console logs.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogLevel is the minimum level written to the logs.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info" // Default.
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

const (
	defaultFFmpeg  = "ffmpeg"
	defaultFFprobe = "ffprobe"
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by the config file, environment and flags (see [Flags.Resolve])
// before being passed by pointer to the packages that need it.
type Config struct {
	// Paths (set from positional args).
	SourcePath string
	DestPath   string

	// Toolchain.
	FFmpegPath  string // Default: "ffmpeg". Env: FRAMECOPY_FFMPEG.
	FFprobePath string // Default: "ffprobe", or the sibling of FFmpegPath. Env: FRAMECOPY_FFPROBE.

	// Behavior flags.
	ShowElapsed  bool    // Print "<seconds> seconds" after the copy.
	Strict       bool    // Frame read/write and finalization failures are fatal.
	Verify       bool    // Compare output against input after the copy.
	FPSTolerance float64 // Default: 0.2. Allowed |output fps - input fps| for --verify.

	// Run artifacts.
	ReportPath  string // Optional JSON run report.
	MetricsFile string // Optional Prometheus textfile.

	// Display and logging.
	LogLevel   LogLevel  // Default: "info".
	LogFile    string    // Optional log file path (JSON lines, appended).
	ColorMode  ColorMode // Default: "auto".
	CheckOnly  bool      // Run --check diagnostics and exit.
	ConfigFile string    // Optional YAML config path.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file, environment and flags apply overrides.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:   defaultFFmpeg,
		FFprobePath:  defaultFFprobe,
		ShowElapsed:  false,
		Strict:       false,
		Verify:       false,
		FPSTolerance: 0.2,
		LogLevel:     LevelInfo,
		ColorMode:    ColorAuto,
		CheckOnly:    false,
	}
}

// Validate checks that enum fields hold valid values and numeric settings
// are in range. When not in CheckOnly mode, it also requires both the
// source and destination paths.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.LogLevel {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		// valid
	default:
		return errors.New("invalid log level (use 'debug', 'info', 'warn' or 'error')")
	}

	if c.FPSTolerance <= 0 {
		return fmt.Errorf("fps tolerance must be positive (got %g)", c.FPSTolerance)
	}
	if c.FFmpegPath == "" || c.FFprobePath == "" {
		return errors.New("ffmpeg and ffprobe paths must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.SourcePath == "" || c.DestPath == "" {
		return errors.New("need exactly source_path and destination_path")
	}
	return nil
}
