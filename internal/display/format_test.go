package display

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical clip 70 MiB", 73400320, "70.0 MiB"},
		{"4.7 GiB", 5046586572, "4.7 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0.000 seconds"},
		{"sub-millisecond truncates", 900 * time.Microsecond, "0.000 seconds"},
		{"milliseconds", 1234 * time.Millisecond, "1.234 seconds"},
		{"minutes", 2*time.Minute + 5*time.Millisecond, "120.005 seconds"},
		{"negative clamps", -time.Second, "0.000 seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatElapsed(tt.d)
			if got != tt.want {
				t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatFPS(t *testing.T) {
	tests := []struct {
		fps  float64
		want string
	}{
		{25, "25 fps"},
		{30000.0 / 1001.0, "29.97 fps"},
		{23.976, "23.976 fps"},
		{0, "0 fps"},
	}
	for _, tt := range tests {
		if got := FormatFPS(tt.fps); got != tt.want {
			t.Errorf("FormatFPS(%v) = %q, want %q", tt.fps, got, tt.want)
		}
	}
}
