// Package verify compares a copied output video against its source.
//
// Both files are probed concurrently with exact frame counting. MP4-family
// outputs are counted from the container's sample table instead, which
// avoids a full decode of the output.
package verify

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/framecopy/internal/display"
	"github.com/backmassage/framecopy/internal/probe"
)

// DefaultFPSTolerance is the largest accepted frame rate difference.
const DefaultFPSTolerance = 0.2

// Options configures Compare.
type Options struct {
	FFprobePath  string
	FPSTolerance float64
}

// Summary holds what Compare measured and every mismatch it found.
type Summary struct {
	SourceFrames   int      `json:"source_frames"`
	OutputFrames   int      `json:"output_frames"`
	CopiedFrames   int      `json:"copied_frames"`
	SourceFPS      float64  `json:"source_fps"`
	OutputFPS      float64  `json:"output_fps"`
	SourceDuration float64  `json:"source_duration"`
	OutputDuration float64  `json:"output_duration"`
	SourceSize     string   `json:"source_size"`
	OutputSize     string   `json:"output_size"`
	Mismatches     []string `json:"mismatches,omitempty"`
	// Warnings do not fail verification.
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether the output matched the source.
func (s *Summary) OK() bool { return len(s.Mismatches) == 0 }

func (s *Summary) mismatch(format string, args ...any) {
	s.Mismatches = append(s.Mismatches, fmt.Sprintf(format, args...))
}

func (s *Summary) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Compare probes src and dst and checks that dst holds the same number of
// frames as src and as were copied, at the same rate and size. An error is
// returned only when a file cannot be probed.
func Compare(ctx context.Context, src, dst string, copied int, opts Options) (*Summary, error) {
	if opts.FPSTolerance <= 0 {
		opts.FPSTolerance = DefaultFPSTolerance
	}
	bin := opts.FFprobePath
	if bin == "" {
		bin = "ffprobe"
	}

	var in, out *probe.ProbeResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in, err = probe.Probe(gctx, bin, src, probe.Options{CountFrames: true})
		return err
	})
	g.Go(func() (err error) {
		out, err = probe.Probe(gctx, bin, dst, probe.Options{CountFrames: !isMP4(dst)})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	s := &Summary{
		CopiedFrames:   copied,
		SourceDuration: in.Duration(),
		OutputDuration: out.Duration(),
		SourceSize:     in.Resolution(),
		OutputSize:     out.Resolution(),
	}
	if in.PrimaryVideo != nil {
		s.SourceFrames = in.PrimaryVideo.FrameCount()
		s.SourceFPS = in.PrimaryVideo.FPS()
	}
	if out.PrimaryVideo == nil {
		s.mismatch("output has no video stream")
		return s, nil
	}
	s.OutputFPS = out.PrimaryVideo.FPS()
	s.OutputFrames = out.PrimaryVideo.FrameCount()
	if isMP4(dst) {
		if n, err := countMP4Samples(dst); err == nil {
			s.OutputFrames = n
		}
	}

	s.check(opts.FPSTolerance)
	return s, nil
}

// check records the mismatches and warnings between the measured source
// and output.
func (s *Summary) check(fpsTolerance float64) {
	if s.OutputFrames != s.SourceFrames {
		s.mismatch("frame count: output %d, source %d", s.OutputFrames, s.SourceFrames)
	}
	if s.OutputFrames != s.CopiedFrames {
		s.mismatch("frame count: output %d, copied %d", s.OutputFrames, s.CopiedFrames)
	}
	if math.Abs(s.OutputFPS-s.SourceFPS) >= fpsTolerance {
		s.mismatch("frame rate: output %s, source %s", display.FormatFPS(s.OutputFPS), display.FormatFPS(s.SourceFPS))
	}
	if s.OutputSize != s.SourceSize {
		s.mismatch("frame size: output %s, source %s", s.OutputSize, s.SourceSize)
	}

	wantSrc, ok := ExpectedFrames(s.SourceFPS, s.SourceDuration, s.SourceFrames)
	if !ok {
		s.mismatch("source: %d frames, expected %d from rate and duration", s.SourceFrames, wantSrc)
	}
	wantOut, ok := ExpectedFrames(s.OutputFPS, s.OutputDuration, s.OutputFrames)
	if !ok {
		s.mismatch("output: %d frames, expected %d from rate and duration", s.OutputFrames, wantOut)
	}
	// Zero means unknown on either side.
	if wantSrc != 0 && wantOut != 0 && wantSrc != wantOut {
		s.mismatch("expected frames: output %d, source %d", wantOut, wantSrc)
	}

	if centiseconds(s.OutputDuration) != centiseconds(s.SourceDuration) {
		s.warn("duration: output %.2fs, source %.2fs", s.OutputDuration, s.SourceDuration)
	}
}

func centiseconds(d float64) float64 {
	return math.Trunc(d*100) / 100
}

// ExpectedFrames returns the frame count implied by fps and a duration in
// seconds (truncated to centiseconds) and whether actual agrees with it
// within half a frame. Unknown inputs (any zero) always agree.
func ExpectedFrames(fps, duration float64, actual int) (int, bool) {
	if fps <= 0 || duration <= 0 || actual <= 0 {
		return 0, true
	}
	count := fps * centiseconds(duration)
	rounded := int(math.RoundToEven(count))
	roundedUp := int(math.Floor(count)) + 1

	want := roundedUp
	if rounded == roundedUp || rounded == actual {
		want = rounded
	}
	if want != actual && math.Abs(count-float64(actual)) > 0.5 {
		return want, false
	}
	return want, true
}

func isMP4(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// countMP4Samples returns the sample count of the first video track of a
// progressive MP4 file.
func countMP4Samples(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	mf, err := mp4.DecodeFile(f)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if mf.Moov == nil || mf.IsFragmented() {
		return 0, fmt.Errorf("%s: no progressive moov box", path)
	}
	for _, trak := range mf.Moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsz == nil {
			continue
		}
		return int(trak.Mdia.Minf.Stbl.Stsz.SampleNumber), nil
	}
	return 0, fmt.Errorf("%s: no video track", path)
}
