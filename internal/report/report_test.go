package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/framecopy/internal/codec"
	"github.com/backmassage/framecopy/internal/pipeline"
	"github.com/backmassage/framecopy/internal/verify"
)

func sampleStats() pipeline.RunStats {
	return pipeline.RunStats{
		Source:        "in.mp4",
		Dest:          "out.webm",
		Tag:           codec.DefaultTag,
		Width:         640,
		Height:        480,
		FPS:           25,
		FramesRead:    100,
		FramesWritten: 99,
		WriteErrors:   1,
		OutputBytes:   4096,
		Elapsed:       1500 * time.Millisecond,
		State:         pipeline.StateDone,
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNew(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	r := New("id", "1.0.0", started, sampleStats(), nil, nil)

	assert.Equal(t, "VP80", r.Codec)
	assert.Equal(t, uint32(808996950), r.CodecTag)
	assert.Equal(t, 99, r.Frames)
	assert.Equal(t, 100, r.FramesRead)
	assert.Equal(t, 1, r.DroppedFrames)
	assert.Equal(t, 1.5, r.ElapsedSeconds)
	assert.Equal(t, "done", r.State)
	assert.Equal(t, time.UTC, r.StartedAt.Location())
	assert.Empty(t, r.Error)

	failed := sampleStats()
	failed.State = pipeline.StateFailed
	r = New("id", "1.0.0", started, failed, errors.New("boom"), nil)
	assert.Equal(t, "failed", r.State)
	assert.Equal(t, "boom", r.Error)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	summary := &verify.Summary{SourceFrames: 100, OutputFrames: 99, Mismatches: []string{"frame count"}}
	want := New(NewRunID(), "dev", time.Now(), sampleStats(), nil, summary)

	require.NoError(t, Write(path, want))
	// Overwrites in place.
	require.NoError(t, Write(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, "out.webm", got.Destination)
	require.NotNil(t, got.Verification)
	assert.Equal(t, []string{"frame count"}, got.Verification.Mismatches)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "error")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWrite_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	assert.Error(t, Write(path, New("id", "dev", time.Now(), sampleStats(), nil, nil)))
}
