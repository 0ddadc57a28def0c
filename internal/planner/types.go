package planner

import "github.com/backmassage/framecopy/internal/codec"

// SourceProps are the source properties a sink inherits.
type SourceProps struct {
	Width  int
	Height int
	FPS    float64
	Rate   string // Rational rate as reported by ffprobe, e.g. "30000/1001".
}

// SinkPlan holds every decision needed to start an encoder for one output.
// Frame size and rate are copied from the source and never altered.
type SinkPlan struct {
	OutputPath string
	Codec      codec.Codec
	Width      int
	Height     int
	FPS        float64
	Rate       string
	Color      bool   // Frames carry three channels.
	Format     string // Forced muxer; empty lets ffmpeg pick from the extension.
}

// FrameSize returns the byte length of one packed rgb24 frame.
func (p *SinkPlan) FrameSize() int {
	return p.Width * p.Height * 3
}
