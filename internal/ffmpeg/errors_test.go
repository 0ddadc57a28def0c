package ffmpeg

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"missing input", "/media/in.mp4: No such file or directory", ErrNoSuchFile},
		{"garbage input", "/media/in.mp4: Invalid data found when processing input", ErrInvalidData},
		{"truncated mp4", "[mov,mp4 @ 0x55] moov atom not found", ErrInvalidData},
		{"read-only output", "/ro/out.webm: Read-only file system", ErrPermission},
		{"denied output", "/root/out.webm: Permission denied", ErrPermission},
		{"missing encoder", "Unknown encoder 'libvpx'", ErrUnknownEncoder},
		{"encoder open", "Error while opening encoder for output stream #0:0 - maybe incorrect parameters", ErrEncoderInit},
		{"clean", "frame=  10 fps=0.0 q=0.0 size=0kB", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.stderr); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	base := errors.New("exit status 1")
	err := error(&ExitError{Name: "ffmpeg", Stderr: "warn\nout.webm: Permission denied\n", Err: base})

	if !errors.Is(err, base) {
		t.Error("should unwrap to the exec error")
	}
	if !errors.Is(err, ErrPermission) {
		t.Error("should unwrap to the classified sentinel")
	}
	if got, want := err.Error(), "ffmpeg: exit status 1: out.webm: Permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 8}
	for _, s := range []string{"abc", "defgh", "ijk"} {
		if n, err := b.Write([]byte(s)); n != len(s) || err != nil {
			t.Fatalf("Write(%q) = %d, %v", s, n, err)
		}
	}
	if got := b.String(); got != "defghijk" {
		t.Errorf("tail: got %q, want %q", got, "defghijk")
	}
}
