package config

// This file binds CLI flags to a Config and resolves the final settings.
// Flags are grouped into behavior, artifacts, toolchain, and display.
// Shortcut flags (--no-color, --verbose) are applied after the config file
// and environment so they always win.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// Flags ties a parsed flag set to the Config it was bound to.
type Flags struct {
	fs      *pflag.FlagSet
	cfg     *Config
	negated negatedFlags
}

// negatedFlags holds boolean shortcuts that are applied last.
type negatedFlags struct {
	noColor bool
	verbose bool
}

// BindFlags registers every framecopy flag on fs, writing into cfg.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *Flags {
	f := &Flags{fs: fs, cfg: cfg}
	defineBehaviorFlags(fs, cfg)
	defineArtifactFlags(fs, cfg)
	defineToolchainFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &f.negated)
	return f
}

// defineBehaviorFlags registers --elapsed, --strict, --verify, --fps-tolerance.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.ShowElapsed, "elapsed", "e", cfg.ShowElapsed, "Print the elapsed copy time in seconds")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Fail on the first frame read, write or finalization error")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Compare frame count, rate and size of the output against the input")
	fs.Float64Var(&cfg.FPSTolerance, "fps-tolerance", cfg.FPSTolerance, "Allowed frame rate difference for --verify")
}

// defineArtifactFlags registers --report and --metrics-file.
func defineArtifactFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ReportPath, "report", "", "Write a JSON run report to this path")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
}

// defineToolchainFlags registers --ffmpeg, --ffprobe, --config.
func defineToolchainFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe binary")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML config file")
}

// defineDisplayFlags registers --color, --no-color, --log-level, --verbose, --log, --check.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.Var(&colorModeValue{&cfg.ColorMode}, "color", "Colored logs: auto | always | never")
	fs.Lookup("color").NoOptDefVal = string(ColorAlways)
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.Var(&logLevelValue{&cfg.LogLevel}, "log-level", "Log level: debug | info | warn | error")
	fs.BoolVarP(&n.verbose, "verbose", "v", false, "Same as --log-level debug")
	fs.StringVarP(&cfg.LogFile, "log", "l", "", "Append JSON logs to file")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run toolchain diagnostics and exit")
}

// Resolve completes the Config after flag parsing: it applies the config
// file and environment to every setting whose flag was not given, then the
// shortcut flags, the ffprobe next to ffmpeg when ffprobe was not set, and
// finally the positional paths.
func (f *Flags) Resolve(args []string, getenv func(string) string) error {
	explicitFFprobe := f.fs.Changed("ffprobe") || getenv(EnvFFprobe) != ""
	if f.cfg.ConfigFile != "" {
		fc, err := loadFile(f.cfg.ConfigFile, f.cfg, f.fs.Changed)
		if err != nil {
			return err
		}
		explicitFFprobe = explicitFFprobe || fc.FFprobe != nil
	}
	if err := ApplyEnv(f.cfg, getenv, f.fs.Changed); err != nil {
		return err
	}
	applyNegatedFlags(f.cfg, &f.negated)
	if !explicitFFprobe {
		deriveFFprobe(f.cfg)
	}
	return parsePositionalArgs(args, f.cfg)
}

// applyNegatedFlags copies shortcut flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
	if n.verbose {
		cfg.LogLevel = LevelDebug
	}
}

// deriveFFprobe points FFprobePath at the ffprobe next to a non-PATH ffmpeg
// when such a sibling exists. Callers skip it when ffprobe was set by a
// flag, the environment or the config file.
func deriveFFprobe(cfg *Config) {
	if filepath.Base(cfg.FFmpegPath) == cfg.FFmpegPath {
		return
	}
	sibling := filepath.Join(filepath.Dir(cfg.FFmpegPath), defaultFFprobe)
	if _, err := os.Stat(sibling); err == nil {
		cfg.FFprobePath = sibling
	}
}

// parsePositionalArgs sets SourcePath and DestPath from the two positional
// args when not in CheckOnly mode.
func parsePositionalArgs(args []string, cfg *Config) error {
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 2 {
		return errors.New("need exactly source_path and destination_path")
	}
	cfg.SourcePath = args[0]
	cfg.DestPath = args[1]
	return nil
}

// pflag.Value adapters so we can use enum types (ColorMode, LogLevel) with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always", "true":
		*c.p = ColorAlways
	case "never", "false":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

type logLevelValue struct{ p *LogLevel }

func (l *logLevelValue) String() string { return string(*l.p) }
func (l *logLevelValue) Type() string   { return "level" }
func (l *logLevelValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "debug":
		*l.p = LevelDebug
	case "info":
		*l.p = LevelInfo
	case "warn", "warning":
		*l.p = LevelWarn
	case "error":
		*l.p = LevelError
	default:
		return fmt.Errorf("invalid log level %q (use 'debug', 'info', 'warn' or 'error')", s)
	}
	return nil
}
