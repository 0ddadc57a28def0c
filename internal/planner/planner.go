package planner

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/backmassage/framecopy/internal/codec"
)

var (
	// ErrInvalidSize is returned when the source reports a non-positive frame size.
	ErrInvalidSize = errors.New("invalid frame size")
	// ErrInvalidRate is returned when the source reports no usable frame rate.
	ErrInvalidRate = errors.New("invalid frame rate")
)

// BuildPlan produces the SinkPlan for writing output with the codec behind
// tag at the source's size and rate.
func BuildPlan(output string, tag codec.Tag, src SourceProps) (*SinkPlan, error) {
	c, err := codec.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if src.Width <= 0 || src.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, src.Width, src.Height)
	}
	if src.FPS <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRate, src.Rate)
	}

	return &SinkPlan{
		OutputPath: output,
		Codec:      c,
		Width:      src.Width,
		Height:     src.Height,
		FPS:        src.FPS,
		Rate:       src.Rate,
		Color:      true,
		Format:     c.FormatFor(output),
	}, nil
}

// RateArg returns the value passed to ffmpeg's -r: the rational source
// rate when known, else the float rate at full precision.
func (p *SinkPlan) RateArg() string {
	if p.Rate != "" {
		return p.Rate
	}
	return strconv.FormatFloat(p.FPS, 'f', -1, 64)
}
