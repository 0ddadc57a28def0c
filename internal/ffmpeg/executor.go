package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// stderrTail bounds how much of a process's stderr is kept.
	stderrTail = 8 << 10
	// waitDelay bounds how long Wait drains pipes after the process exits
	// or the context is cancelled.
	waitDelay = 5 * time.Second
)

// StartOptions selects which standard streams the caller drives.
type StartOptions struct {
	Stdin  bool
	Stdout bool
}

// Process is a running ffmpeg invocation. Stdin and Stdout are set when
// requested in StartOptions. The process is killed when the context passed
// to Start is cancelled.
type Process struct {
	Name   string
	Stdin  io.WriteCloser
	Stdout io.ReadCloser

	cmd    *exec.Cmd
	stderr *tailBuffer

	waitOnce sync.Once
	waitErr  error
}

// Start launches bin with args. Stderr is captured into a bounded buffer
// for diagnostics.
func Start(ctx context.Context, bin string, args []string, opts StartOptions) (*Process, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = waitDelay

	p := &Process{
		Name:   filepath.Base(bin),
		cmd:    cmd,
		stderr: &tailBuffer{max: stderrTail},
	}
	cmd.Stderr = p.stderr

	var err error
	if opts.Stdin {
		if p.Stdin, err = cmd.StdinPipe(); err != nil {
			return nil, fmt.Errorf("%s stdin: %w", p.Name, err)
		}
	}
	if opts.Stdout {
		if p.Stdout, err = cmd.StdoutPipe(); err != nil {
			return nil, fmt.Errorf("%s stdout: %w", p.Name, err)
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.Name, err)
	}
	return p, nil
}

// Wait waits for the process to exit and returns an *ExitError when it
// failed. Subsequent calls return the same result. When Stdout is used it
// must be read to EOF, or the process killed, before calling Wait.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		if err := p.cmd.Wait(); err != nil {
			p.waitErr = &ExitError{Name: p.Name, Stderr: p.stderr.String(), Err: err}
		}
	})
	return p.waitErr
}

// Kill terminates the process without waiting for it.
func (p *Process) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// Stderr returns the captured tail of the process's stderr.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// ExitError reports a failed ffmpeg process together with its stderr. It
// unwraps to the exec error and to the Classify sentinel, if any.
type ExitError struct {
	Name   string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if msg := LastLine(e.Stderr); msg != "" {
		return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, msg)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ExitError) Unwrap() []error {
	errs := []error{e.Err}
	if cls := Classify(e.Stderr); cls != nil {
		errs = append(errs, cls)
	}
	return errs
}

// LastLine returns the last non-empty line of s, trimmed.
func LastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// tailBuffer keeps the last max bytes written to it. Safe for concurrent use.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
