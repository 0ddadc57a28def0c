package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file schema. Pointer fields distinguish
// "absent" from zero values; unknown keys are rejected.
type fileConfig struct {
	FFmpeg       *string  `yaml:"ffmpeg"`
	FFprobe      *string  `yaml:"ffprobe"`
	Elapsed      *bool    `yaml:"elapsed"`
	Strict       *bool    `yaml:"strict"`
	Verify       *bool    `yaml:"verify"`
	FPSTolerance *float64 `yaml:"fps_tolerance"`
	Report       *string  `yaml:"report"`
	MetricsFile  *string  `yaml:"metrics_file"`
	LogLevel     *string  `yaml:"log_level"`
	LogFile      *string  `yaml:"log_file"`
	Color        *string  `yaml:"color"`
}

// loadFile reads the YAML config at path into cfg. Settings whose flag
// was given on the command line (changed reports true) are left alone.
// The decoded file is returned so callers can tell which keys it set.
func loadFile(path string, cfg *Config, changed func(flag string) bool) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.FFmpegPath, fc.FFmpeg, changed("ffmpeg"))
	setString(&cfg.FFprobePath, fc.FFprobe, changed("ffprobe"))
	setString(&cfg.ReportPath, fc.Report, changed("report"))
	setString(&cfg.MetricsFile, fc.MetricsFile, changed("metrics-file"))
	setString(&cfg.LogFile, fc.LogFile, changed("log"))
	setBool(&cfg.ShowElapsed, fc.Elapsed, changed("elapsed"))
	setBool(&cfg.Strict, fc.Strict, changed("strict"))
	setBool(&cfg.Verify, fc.Verify, changed("verify"))
	if fc.FPSTolerance != nil && !changed("fps-tolerance") {
		cfg.FPSTolerance = *fc.FPSTolerance
	}
	if fc.LogLevel != nil && !changed("log-level") {
		if err := (&logLevelValue{&cfg.LogLevel}).Set(*fc.LogLevel); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if fc.Color != nil && !changed("color") {
		if err := (&colorModeValue{&cfg.ColorMode}).Set(*fc.Color); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return &fc, nil
}

func setString(dst *string, v *string, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, flagSet bool) {
	if v != nil && !flagSet {
		*dst = *v
	}
}
