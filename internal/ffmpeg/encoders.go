package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Version returns the first line of `bin -version`.
func Version(ctx context.Context, bin string) (string, error) {
	out, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", bin, err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// ListEncoders runs `bin -encoders` and returns the set of encoder names.
func ListEncoders(ctx context.Context, bin string) (map[string]bool, error) {
	out, err := exec.CommandContext(ctx, bin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, fmt.Errorf("%s -encoders: %w", bin, err)
	}
	return ParseEncoders(out), nil
}

// HasEncoder reports whether bin lists the named encoder.
func HasEncoder(ctx context.Context, bin, name string) (bool, error) {
	encoders, err := ListEncoders(ctx, bin)
	if err != nil {
		return false, err
	}
	return encoders[name], nil
}

// ParseEncoders extracts encoder names from `ffmpeg -encoders` output.
// Entries look like " V....D libvpx    libvpx VP8 (codec vp8)"; legend lines
// (" V..... = Video") are skipped.
func ParseEncoders(out []byte) map[string]bool {
	encoders := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || len(fields[0]) != 6 || fields[1] == "=" {
			continue
		}
		switch fields[0][0] {
		case 'V', 'A', 'S':
			encoders[fields[1]] = true
		}
	}
	return encoders
}
