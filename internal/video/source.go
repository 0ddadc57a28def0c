package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/framecopy/internal/ffmpeg"
	"github.com/backmassage/framecopy/internal/probe"
)

var (
	// ErrNoVideoStream is returned when the input has no decodable video track.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrInvalidSize is returned when the input reports a non-positive frame size.
	ErrInvalidSize = errors.New("invalid frame size")
	// ErrFrameSize is returned when a frame does not match the handle's size.
	ErrFrameSize = errors.New("frame size mismatch")
	// ErrClosed is returned by operations on a closed handle.
	ErrClosed = errors.New("handle closed")
)

// SourceOptions configures OpenSource.
type SourceOptions struct {
	FFmpegPath  string
	FFprobePath string
	Logger      zerolog.Logger
}

// Source is an open input video. Frames are read in decode order.
type Source struct {
	stream probe.VideoStream
	proc   *ffmpeg.Process
	log    zerolog.Logger

	read   int
	eof    bool
	closed bool
}

// OpenSource probes path and starts a decoder for its first video stream
// that is not an attached picture.
// path may be a local file or any URL ffmpeg accepts.
func OpenSource(ctx context.Context, path string, opts SourceOptions) (*Source, error) {
	if !isURL(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}

	pr, err := probe.Probe(ctx, opts.FFprobePath, path, probe.Options{})
	if err != nil {
		return nil, err
	}
	v := pr.PrimaryVideo
	if v == nil {
		return nil, ErrNoVideoStream
	}
	if v.Width <= 0 || v.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, v.Width, v.Height)
	}
	if len(pr.AudioStreams) > 0 {
		opts.Logger.Debug().Int("audio_streams", len(pr.AudioStreams)).Msg("audio streams are not copied")
	}

	if v.Rotation != 0 {
		opts.Logger.Debug().Int("rotation", v.Rotation).Msg("frames are copied in stored orientation")
	}

	proc, err := ffmpeg.Start(ctx, opts.FFmpegPath, ffmpeg.DecodeArgs(path, v.Index), ffmpeg.StartOptions{Stdout: true})
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug().
		Str("codec", v.Codec).
		Int("stream", v.Index).
		Int("width", v.Width).
		Int("height", v.Height).
		Str("rate", v.Rate()).
		Int("declared_frames", v.NbFrames).
		Msg("decoder started")

	return &Source{stream: *v, proc: proc, log: opts.Logger}, nil
}

// Width returns the frame width in pixels.
func (s *Source) Width() int { return s.stream.Width }

// Height returns the frame height in pixels.
func (s *Source) Height() int { return s.stream.Height }

// FPS returns the frame rate. 0 when the container declares none.
func (s *Source) FPS() float64 { return s.stream.FPS() }

// Rate returns the rational frame rate as declared by the container.
func (s *Source) Rate() string { return s.stream.Rate() }

// Read fills f with the next frame. It returns false with a nil error at
// end of stream. A stream that ends inside a frame returns false with an
// io.ErrUnexpectedEOF error.
func (s *Source) Read(f *Frame) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	if s.eof {
		return false, nil
	}
	if f.Width != s.stream.Width || f.Height != s.stream.Height || len(f.Pix) != f.Size() {
		return false, fmt.Errorf("%w: got %dx%d, source is %dx%d",
			ErrFrameSize, f.Width, f.Height, s.stream.Width, s.stream.Height)
	}

	_, err := io.ReadFull(s.proc.Stdout, f.Pix)
	switch {
	case err == nil:
		s.read++
		return true, nil
	case errors.Is(err, io.EOF):
		s.eof = true
		return false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
		return false, fmt.Errorf("frame %d truncated: %w", s.read, err)
	default:
		return false, fmt.Errorf("read frame %d: %w", s.read, err)
	}
}

// Close releases the decoder. A decoder stopped before end of stream is
// killed and its exit status ignored; otherwise Close reports how the
// decoder exited.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.eof {
		s.proc.Kill()
		_ = s.proc.Wait()
		s.log.Debug().Int("frames", s.read).Msg("decoder stopped before end of stream")
		return nil
	}
	return s.proc.Wait()
}

func isURL(path string) bool {
	return strings.Contains(path, "://")
}
