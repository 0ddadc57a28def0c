package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/config"
	"github.com/backmassage/framecopy/internal/display"
	"github.com/backmassage/framecopy/internal/logging"
	"github.com/backmassage/framecopy/internal/metrics"
	"github.com/backmassage/framecopy/internal/pipeline"
	"github.com/backmassage/framecopy/internal/report"
	"github.com/backmassage/framecopy/internal/verify"
)

// transcode runs one copy and writes its diagnostics to stdout and its
// optional artifacts (verification, metrics, report).
func transcode(ctx context.Context, cfg *config.Config, base *logging.Logger, stdout io.Writer) error {
	runID := report.NewRunID()
	log := base.With().Str("run_id", runID).Logger()
	started := time.Now()

	stats, runErr := pipeline.Run(ctx, cfg, log.With().Str("component", "pipeline").Logger())

	result := metrics.ResultSuccess
	var (
		srcErr  *pipeline.SourceOpenError
		sinkErr *pipeline.SinkOpenError
	)
	switch {
	case errors.As(runErr, &srcErr):
		fmt.Fprintf(stdout, "Could not open the input video: %s\n", srcErr.Path)
		result = metrics.ResultSourceFailed
	case errors.As(runErr, &sinkErr):
		fmt.Fprintf(stdout, "Could not open the output video for write: %s\n", sinkErr.Path)
		result = metrics.ResultSinkFailed
	case runErr != nil:
		result = metrics.ResultCopyFailed
	case cfg.ShowElapsed:
		fmt.Fprintln(stdout, display.FormatElapsed(stats.Elapsed))
	}

	var summary *verify.Summary
	if runErr == nil && cfg.Verify {
		var ok bool
		summary, ok = verifyOutput(ctx, cfg, stats, log.With().Str("component", "verify").Logger())
		if !ok {
			fmt.Fprintf(stdout, "Output video does not match the input video: %s\n", stats.Dest)
			result = metrics.ResultVerifyMismatch
		}
	}

	artifactErr := writeArtifacts(cfg, runID, started, stats, runErr, summary, result)
	if artifactErr != nil {
		log.Error().Err(artifactErr).Msg("cannot write run artifacts")
	}

	switch {
	case srcErr != nil || sinkErr != nil:
		return &exitError{code: exitFailure}
	case runErr != nil:
		return &exitError{code: exitFailure, err: runErr}
	case result != metrics.ResultSuccess:
		return &exitError{code: exitFailure}
	case artifactErr != nil:
		return &exitError{code: exitFailure, err: artifactErr}
	}
	return nil
}

// verifyOutput compares the finished output with its source and logs every
// mismatch and warning. The summary is nil when a file could not be probed.
func verifyOutput(ctx context.Context, cfg *config.Config, stats pipeline.RunStats, log zerolog.Logger) (*verify.Summary, bool) {
	summary, err := verify.Compare(ctx, stats.Source, stats.Dest, stats.FramesWritten, verify.Options{
		FFprobePath:  cfg.FFprobePath,
		FPSTolerance: cfg.FPSTolerance,
	})
	if err != nil {
		log.Error().Err(err).Msg("cannot verify output")
		return nil, false
	}
	for _, m := range summary.Mismatches {
		log.Warn().Str("destination", stats.Dest).Msg(m)
	}
	for _, w := range summary.Warnings {
		log.Warn().Str("destination", stats.Dest).Msg(w)
	}
	if summary.OK() {
		log.Info().Int("frames", summary.OutputFrames).Msg("output matches input")
	}
	return summary, summary.OK()
}

// writeArtifacts writes the metrics textfile and the JSON report when
// configured. Both are attempted even if the first fails.
func writeArtifacts(cfg *config.Config, runID string, started time.Time, stats pipeline.RunStats,
	runErr error, summary *verify.Summary, result string) error {
	var errs []error
	if cfg.MetricsFile != "" {
		m := metrics.New()
		m.ObserveRun(stats.FramesWritten, stats.WriteErrors, stats.Elapsed, stats.OutputBytes, result)
		errs = append(errs, m.WriteTextfile(cfg.MetricsFile))
	}
	if cfg.ReportPath != "" {
		r := report.New(runID, version, started, stats, runErr, summary)
		errs = append(errs, report.Write(cfg.ReportPath, r))
	}
	return errors.Join(errs...)
}
