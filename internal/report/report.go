// Package report writes the JSON summary of a run.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/backmassage/framecopy/internal/pipeline"
	"github.com/backmassage/framecopy/internal/verify"
)

// Report is the document written by --report.
type Report struct {
	RunID          string          `json:"run_id"`
	Version        string          `json:"version"`
	StartedAt      time.Time       `json:"started_at"`
	Source         string          `json:"source"`
	Destination    string          `json:"destination"`
	Codec          string          `json:"codec"`
	CodecTag       uint32          `json:"codec_tag"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	FPS            float64         `json:"fps"`
	FramesRead     int             `json:"frames_read"`
	Frames         int             `json:"frames"`
	WriteErrors    int             `json:"write_errors"`
	DroppedFrames  int             `json:"dropped_frames"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	OutputBytes    int64           `json:"output_bytes"`
	State          string          `json:"state"`
	Error          string          `json:"error,omitempty"`
	Verification   *verify.Summary `json:"verification,omitempty"`
}

// NewRunID returns a random identifier for one run.
func NewRunID() string {
	return uuid.NewString()
}

// New builds a report from the outcome of a run. runErr and summary may
// be nil.
func New(runID, version string, started time.Time, stats pipeline.RunStats, runErr error, summary *verify.Summary) *Report {
	r := &Report{
		RunID:          runID,
		Version:        version,
		StartedAt:      started.UTC(),
		Source:         stats.Source,
		Destination:    stats.Dest,
		Codec:          stats.Tag.String(),
		CodecTag:       uint32(stats.Tag),
		Width:          stats.Width,
		Height:         stats.Height,
		FPS:            stats.FPS,
		FramesRead:     stats.FramesRead,
		Frames:         stats.FramesWritten,
		WriteErrors:    stats.WriteErrors,
		DroppedFrames:  stats.DroppedFrames(),
		ElapsedSeconds: stats.Elapsed.Seconds(),
		OutputBytes:    stats.OutputBytes,
		State:          stats.State.String(),
		Verification:   summary,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

// Write stores r at path. The file is replaced atomically and synced, so
// readers see either the previous report or the complete new one.
func Write(path string, r *Report) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending report: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
