package pipeline

import "fmt"

// SourceOpenError reports that the input video could not be opened.
type SourceOpenError struct {
	Path string
	Err  error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("open source %q: %v", e.Path, e.Err)
}

func (e *SourceOpenError) Unwrap() error { return e.Err }

// SinkOpenError reports that the output video could not be opened for write.
type SinkOpenError struct {
	Path string
	Err  error
}

func (e *SinkOpenError) Error() string {
	return fmt.Sprintf("open sink %q: %v", e.Path, e.Err)
}

func (e *SinkOpenError) Unwrap() error { return e.Err }

// CopyError reports a failure after both handles were open: a cancelled
// run, or in strict mode a frame or finalization failure. Frame is the
// index of the frame being copied when the run stopped.
type CopyError struct {
	Frame int
	Err   error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy stopped at frame %d: %v", e.Frame, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }
