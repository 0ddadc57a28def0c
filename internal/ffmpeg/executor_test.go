package ffmpeg

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/backmassage/framecopy/internal/codec"
	"github.com/backmassage/framecopy/internal/planner"
	"github.com/backmassage/framecopy/internal/testutil/fakeff"
)

func TestMain(m *testing.M) {
	fakeff.RunIfRequested()
	goleak.VerifyTestMain(m)
}

func TestProcess_DecodeToEOF(t *testing.T) {
	bin := fakeff.Install(t)
	in := filepath.Join(t.TempDir(), "in.webm")
	fakeff.WriteMedia(t, in, fakeff.Media{Width: 2, Height: 2, Frames: 3})

	p, err := Start(context.Background(), bin, DecodeArgs(in, 0), StartOptions{Stdout: true})
	require.NoError(t, err)

	data, err := io.ReadAll(p.Stdout)
	require.NoError(t, err)
	assert.Len(t, data, 3*12)
	require.NoError(t, p.Wait())
	// Wait is idempotent.
	require.NoError(t, p.Wait())
}

func TestProcess_EncodeFailureIsClassified(t *testing.T) {
	bin := fakeff.Install(t)
	out := filepath.Join(t.TempDir(), "missing-dir", "out.webm")
	plan, err := planner.BuildPlan(out, codec.DefaultTag, planner.SourceProps{Width: 2, Height: 2, FPS: 25})
	require.NoError(t, err)

	p, err := Start(context.Background(), bin, EncodeArgs(plan), StartOptions{Stdin: true})
	require.NoError(t, err)
	_, _ = p.Stdin.Write(make([]byte, plan.FrameSize()))
	require.NoError(t, p.Stdin.Close())

	err = p.Wait()
	require.Error(t, err)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, errors.Is(err, ErrNoSuchFile), "got %v", err)
	assert.Contains(t, p.Stderr(), "No such file or directory")
}

func TestProcess_KillUnblocksWait(t *testing.T) {
	bin := fakeff.Install(t)
	plan, err := planner.BuildPlan(filepath.Join(t.TempDir(), "out.webm"), codec.DefaultTag,
		planner.SourceProps{Width: 2, Height: 2, FPS: 25})
	require.NoError(t, err)

	// The fake encoder blocks reading stdin until it is closed or killed.
	p, err := Start(context.Background(), bin, EncodeArgs(plan), StartOptions{Stdin: true})
	require.NoError(t, err)
	p.Kill()
	assert.Error(t, p.Wait())
}

func TestStart_MissingBinary(t *testing.T) {
	_, err := Start(context.Background(), filepath.Join(t.TempDir(), "no-ffmpeg"), nil, StartOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestVersionAndEncoders_FakeToolchain(t *testing.T) {
	bin := fakeff.Install(t)
	ctx := context.Background()

	v, err := Version(ctx, bin)
	require.NoError(t, err)
	assert.Contains(t, v, "ffmpeg version")

	ok, err := HasEncoder(ctx, bin, "libvpx")
	require.NoError(t, err)
	assert.True(t, ok)

	fakeff.SetEncoders(t, "libx264")
	ok, err = HasEncoder(ctx, bin, "libvpx")
	require.NoError(t, err)
	assert.False(t, ok)
}
