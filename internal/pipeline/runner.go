package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/codec"
	"github.com/backmassage/framecopy/internal/config"
	"github.com/backmassage/framecopy/internal/display"
	"github.com/backmassage/framecopy/internal/planner"
	"github.com/backmassage/framecopy/internal/video"
)

// Source is the input side of a copy. *video.Source implements it.
type Source interface {
	Width() int
	Height() int
	FPS() float64
	Rate() string
	Read(f *video.Frame) (bool, error)
	Close() error
}

// Sink is the output side of a copy. *video.Sink implements it.
type Sink interface {
	Write(f *video.Frame) error
	Close() error
}

// Opener opens the handles of a run.
type Opener interface {
	OpenSource(ctx context.Context, path string) (Source, error)
	OpenSink(ctx context.Context, plan *planner.SinkPlan) (Sink, error)
}

// ffmpegOpener opens ffmpeg-backed handles using the configured binaries.
type ffmpegOpener struct {
	cfg *config.Config
	log zerolog.Logger
}

func (o ffmpegOpener) OpenSource(ctx context.Context, path string) (Source, error) {
	src, err := video.OpenSource(ctx, path, video.SourceOptions{
		FFmpegPath:  o.cfg.FFmpegPath,
		FFprobePath: o.cfg.FFprobePath,
		Logger:      o.log,
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

func (o ffmpegOpener) OpenSink(ctx context.Context, plan *planner.SinkPlan) (Sink, error) {
	sink, err := video.OpenSink(ctx, plan, video.SinkOptions{
		FFmpegPath: o.cfg.FFmpegPath,
		Logger:     o.log,
	})
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// Runner copies one source video into one destination video.
type Runner struct {
	cfg  *config.Config
	log  zerolog.Logger
	open Opener
	tag  codec.Tag
	now  func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOpener replaces the ffmpeg-backed handles.
func WithOpener(o Opener) Option {
	return func(r *Runner) { r.open = o }
}

// WithClock replaces time.Now for elapsed time measurement.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner returns a Runner writing with the fixed codec.DefaultTag.
func NewRunner(cfg *config.Config, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg: cfg,
		log: log,
		tag: codec.DefaultTag,
		now: time.Now,
	}
	r.open = ffmpegOpener{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run copies cfg.SourcePath into cfg.DestPath with the ffmpeg-backed handles.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) (RunStats, error) {
	return NewRunner(cfg, log).Run(ctx, cfg.SourcePath, cfg.DestPath)
}

// Run opens src, opens dst with src's size and rate, and copies every
// frame. The returned stats are filled in on success and on failure.
func (r *Runner) Run(ctx context.Context, src, dst string) (RunStats, error) {
	stats := RunStats{Source: src, Dest: dst, Tag: r.tag, State: StateNotOpened}
	start := r.now()

	// --- Open source ---
	in, err := r.open.OpenSource(ctx, src)
	if err != nil {
		r.advance(&stats, StateFailed)
		stats.Elapsed = r.now().Sub(start)
		r.log.Error().Err(err).Str("source", src).Msg("cannot open source")
		return stats, &SourceOpenError{Path: src, Err: err}
	}
	defer in.Close()
	r.advance(&stats, StateSourceOpen)
	stats.Width, stats.Height, stats.FPS = in.Width(), in.Height(), in.FPS()

	// --- Open sink with the source's size and rate ---
	plan, err := planner.BuildPlan(dst, r.tag, planner.SourceProps{
		Width:  in.Width(),
		Height: in.Height(),
		FPS:    in.FPS(),
		Rate:   in.Rate(),
	})
	var out Sink
	if err == nil {
		out, err = r.open.OpenSink(ctx, plan)
	}
	if err != nil {
		r.advance(&stats, StateFailed)
		stats.Elapsed = r.now().Sub(start)
		r.log.Error().Err(err).Str("destination", dst).Stringer("tag", r.tag).Msg("cannot open sink")
		return stats, &SinkOpenError{Path: dst, Err: err}
	}
	defer out.Close()
	r.advance(&stats, StateSourceAndSinkOpen)

	r.log.Info().
		Str("source", src).
		Str("destination", dst).
		Int("width", stats.Width).
		Int("height", stats.Height).
		Float64("fps", stats.FPS).
		Stringer("tag", r.tag).
		Msg("copying frames")

	// --- Copy ---
	copyErr := r.copyFrames(ctx, in, out, &stats)
	stats.Elapsed = r.now().Sub(start)

	// --- Release in reverse acquisition order ---
	closeErr := errors.Join(
		wrapClose("sink", out.Close()),
		wrapClose("source", in.Close()),
	)
	stats.OutputBytes = outputSize(dst)

	if copyErr != nil {
		r.advance(&stats, StateFailed)
		if closeErr != nil {
			r.log.Debug().Err(closeErr).Msg("close after failed copy")
		}
		return stats, copyErr
	}
	if closeErr != nil {
		if r.cfg.Strict {
			r.advance(&stats, StateFailed)
			return stats, &CopyError{Frame: stats.FramesRead, Err: closeErr}
		}
		r.log.Warn().Err(closeErr).Msg("close failed")
	}

	r.advance(&stats, StateDone)
	r.logDone(&stats)
	return stats, nil
}

// copyFrames reads every frame from in into a single reused buffer and
// writes it to out unchanged, in order.
func (r *Runner) copyFrames(ctx context.Context, in Source, out Sink, stats *RunStats) error {
	r.advance(stats, StateCopying)
	frame := video.NewFrame(in.Width(), in.Height())

	for {
		if err := ctx.Err(); err != nil {
			r.log.Warn().Int("frame", stats.FramesRead).Msg("interrupted")
			return &CopyError{Frame: stats.FramesRead, Err: err}
		}

		ok, err := in.Read(frame)
		if err != nil {
			if r.cfg.Strict {
				return &CopyError{Frame: stats.FramesRead, Err: err}
			}
			r.log.Warn().Err(err).Int("frame", stats.FramesRead).Msg("read failed, ending copy")
			return nil
		}
		if !ok {
			return nil
		}
		stats.FramesRead++

		if err := out.Write(frame); err != nil {
			stats.WriteErrors++
			if r.cfg.Strict {
				return &CopyError{Frame: stats.FramesRead - 1, Err: err}
			}
			ev := r.log.Debug()
			if stats.WriteErrors == 1 {
				ev = r.log.Warn()
			}
			ev.Err(err).Int("frame", stats.FramesRead-1).Msg("frame write failed, continuing")
			continue
		}
		stats.FramesWritten++
	}
}

// advance moves stats to next and logs the transition. A run that reached
// a terminal state stays there.
func (r *Runner) advance(stats *RunStats, next State) {
	if stats.State.Terminal() {
		r.log.Warn().Stringer("state", stats.State).Stringer("to", next).Msg("ignoring transition out of a terminal state")
		return
	}
	r.log.Debug().Stringer("from", stats.State).Stringer("to", next).Msg("state")
	stats.State = next
}

func (r *Runner) logDone(stats *RunStats) {
	ev := r.log.Info()
	if stats.WriteErrors > 0 {
		ev = r.log.Warn().Int("write_errors", stats.WriteErrors).Int("dropped_frames", stats.DroppedFrames())
	}
	ev.Int("frames", stats.FramesWritten).
		Dur("elapsed", stats.Elapsed).
		Str("output_size", display.FormatBytes(stats.OutputBytes)).
		Msg("copy finished")
}

func wrapClose(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("close %s: %w", what, err)
}

// outputSize returns the size of a local output file, or 0.
func outputSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return 0
	}
	return fi.Size()
}
