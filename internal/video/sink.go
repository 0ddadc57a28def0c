package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/ffmpeg"
	"github.com/backmassage/framecopy/internal/planner"
)

// SinkOptions configures OpenSink.
type SinkOptions struct {
	FFmpegPath string
	Logger     zerolog.Logger
}

// Sink is an open output video. Frames are encoded in write order.
type Sink struct {
	plan *planner.SinkPlan
	proc *ffmpeg.Process
	log  zerolog.Logger

	written int
	closed  bool
}

// OpenSink starts an encoder for plan. It fails when the destination
// cannot be created or ffmpeg has no encoder for the plan's codec.
func OpenSink(ctx context.Context, plan *planner.SinkPlan, opts SinkOptions) (*Sink, error) {
	ok, err := ffmpeg.HasEncoder(ctx, opts.FFmpegPath, plan.Codec.Encoder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s for tag %s", ffmpeg.ErrUnknownEncoder, plan.Codec.Encoder, plan.Codec.Tag)
	}

	created := false
	if !isURL(plan.OutputPath) {
		if created, err = touch(plan.OutputPath); err != nil {
			return nil, err
		}
	}

	proc, err := ffmpeg.Start(ctx, opts.FFmpegPath, ffmpeg.EncodeArgs(plan), ffmpeg.StartOptions{Stdin: true})
	if err != nil {
		if created {
			_ = os.Remove(plan.OutputPath)
		}
		return nil, err
	}

	opts.Logger.Debug().
		Str("encoder", plan.Codec.Encoder).
		Stringer("tag", plan.Codec.Tag).
		Int("width", plan.Width).
		Int("height", plan.Height).
		Str("rate", plan.RateArg()).
		Msg("encoder started")

	return &Sink{plan: plan, proc: proc, log: opts.Logger}, nil
}

// touch creates path if needed and checks that it is writable. created
// reports whether the file did not exist before.
func touch(path string) (created bool, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err == nil {
		return true, f.Close()
	}
	if !errors.Is(err, fs.ErrExist) {
		return false, err
	}
	f, err = os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false, err
	}
	return false, f.Close()
}

// Write sends f to the encoder unchanged.
func (s *Sink) Write(f *Frame) error {
	if s.closed {
		return ErrClosed
	}
	if f.Width != s.plan.Width || f.Height != s.plan.Height || len(f.Pix) != s.plan.FrameSize() {
		return fmt.Errorf("%w: got %dx%d, sink is %dx%d",
			ErrFrameSize, f.Width, f.Height, s.plan.Width, s.plan.Height)
	}
	if _, err := s.proc.Stdin.Write(f.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", s.written, err)
	}
	s.written++
	return nil
}

// Close signals end of stream and waits for the encoder to finalize the
// output. The returned error reports a failed encoder.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.proc.Stdin.Close(); err != nil {
		s.log.Debug().Err(err).Msg("close encoder stdin")
	}
	return s.proc.Wait()
}
