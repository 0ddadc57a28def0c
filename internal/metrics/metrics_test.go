package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(10, 1, 2*time.Second, 2048, ResultSuccess)
	m.ObserveRun(5, 0, time.Second, 1024, ResultCopyFailed)

	if got := testutil.ToFloat64(m.FramesCopied); got != 15 {
		t.Errorf("frames copied: got %g, want 15", got)
	}
	if got := testutil.ToFloat64(m.WriteErrors); got != 1 {
		t.Errorf("write errors: got %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("successful runs: got %g, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunDuration); got != 1 {
		t.Errorf("run duration: got %g, want the last run's 1", got)
	}
	if got := testutil.ToFloat64(m.OutputBytes); got != 1024 {
		t.Errorf("output bytes: got %g, want 1024", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveRun(3, 0, 0, 0, ResultSuccess)
	if got := testutil.ToFloat64(b.FramesCopied); got != 0 {
		t.Errorf("second registry saw %g frames", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveRun(7, 0, 1500*time.Millisecond, 100, ResultSuccess)

	path := filepath.Join(t.TempDir(), "framecopy.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"framecopy_frames_copied_total 7",
		`framecopy_runs_total{result="success"} 1`,
		"framecopy_run_duration_seconds 1.5",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}

	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
		t.Error("missing directory: expected error")
	}
}
