// Package check provides toolchain diagnostics (--check mode) and the
// dependency validation (CheckDeps) behind them: ffmpeg, ffprobe, and the
// encoder for the fixed output codec.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/codec"
	"github.com/backmassage/framecopy/internal/config"
	"github.com/backmassage/framecopy/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrEncoderMissing  = errors.New("encoder not available in ffmpeg")
	ErrEncodeFailed    = errors.New("test encode failed")
)

// RunCheck logs the versions of ffmpeg and ffprobe and the output codec,
// then runs CheckDeps. It reports whether everything passed.
func RunCheck(ctx context.Context, cfg *config.Config, log zerolog.Logger) bool {
	log.Info().Msg("=== System Check ===")
	ok := true

	for _, bin := range []string{cfg.FFmpegPath, cfg.FFprobePath} {
		v, err := ffmpeg.Version(ctx, bin)
		if err != nil {
			log.Error().Err(err).Str("binary", bin).Msg("not usable")
			ok = false
			continue
		}
		log.Info().Str("binary", bin).Msg(v)
	}
	if !ok {
		return false
	}

	c, err := codec.Lookup(codec.DefaultTag)
	if err != nil {
		log.Error().Err(err).Msg("output codec")
		return false
	}
	log.Info().Stringer("tag", c.Tag).Str("encoder", c.Encoder).Msg("output codec")

	if err := CheckDeps(ctx, cfg); err != nil {
		log.Error().Err(err).Str("encoder", c.Encoder).Msg("dependency check failed")
		return false
	}
	log.Info().Str("encoder", c.Encoder).Msg("test encode works")
	return true
}

// CheckDeps verifies that both binaries resolve and that ffmpeg lists and
// can run the encoder for codec.DefaultTag. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, cfg.FFmpegPath)
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, cfg.FFprobePath)
	}
	c, err := codec.Lookup(codec.DefaultTag)
	if err != nil {
		return err
	}
	return checkEncoder(ctx, cfg.FFmpegPath, c)
}

// checkEncoder looks c's encoder up in `ffmpeg -encoders` and runs a
// minimal encode with it.
func checkEncoder(ctx context.Context, bin string, c codec.Codec) error {
	found, err := ffmpeg.HasEncoder(ctx, bin, c.Encoder)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, c.Encoder)
	}
	out, err := exec.CommandContext(ctx, bin, ffmpeg.ProbeEncodeArgs(c)...).CombinedOutput()
	if err != nil {
		if cls := ffmpeg.Classify(string(out)); cls != nil {
			return fmt.Errorf("%w: %w: %w", ErrEncodeFailed, cls, err)
		}
		return fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return nil
}
