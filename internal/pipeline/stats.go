package pipeline

import (
	"time"

	"github.com/backmassage/framecopy/internal/codec"
)

// RunStats describes one run, successful or not.
type RunStats struct {
	Source string
	Dest   string
	Tag    codec.Tag

	// Source properties, copied to the sink.
	Width  int
	Height int
	FPS    float64

	FramesRead    int
	FramesWritten int
	WriteErrors   int
	OutputBytes   int64

	// Elapsed runs from before the source opens to the end of the copy
	// loop; releasing the handles is not included.
	Elapsed time.Duration
	State   State
}

// DroppedFrames returns the number of frames read but not written.
func (s *RunStats) DroppedFrames() int {
	return s.FramesRead - s.FramesWritten
}
