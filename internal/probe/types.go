package probe

import (
	"strconv"
	"strings"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	PixFmt        string
	Width         int
	Height        int
	AvgFrameRate  string
	RFrameRate    string
	NbFrames      int
	NbReadFrames  int
	Duration      float64
	StartTime     float64
	IsAttachedPic bool
	// Rotation is the clockwise display rotation in degrees (0, 90, 180 or 270).
	// Width and Height are the stored size, before any rotation.
	Rotation int
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index int
	Codec string
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	AudioStreams []AudioStream
}

// Rate returns the stream's frame rate as ffprobe reported it, preferring
// the average rate and falling back to the base rate. Unset rates ("0/0")
// yield "".
func (v *VideoStream) Rate() string {
	for _, r := range []string{v.AvgFrameRate, v.RFrameRate} {
		if ParseRate(r) > 0 {
			return r
		}
	}
	return ""
}

// FPS returns the stream's frame rate in frames per second, or 0 when
// ffprobe reported none.
func (v *VideoStream) FPS() float64 {
	return ParseRate(v.Rate())
}

// FrameCount returns the decoded frame count when ffprobe counted frames,
// otherwise the container's declared count. 0 means unknown.
func (v *VideoStream) FrameCount() int {
	if v.NbReadFrames > 0 {
		return v.NbReadFrames
	}
	return v.NbFrames
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}

// Duration returns the primary video stream's duration in seconds, falling
// back to the container duration.
func (p *ProbeResult) Duration() float64 {
	if p.PrimaryVideo != nil && p.PrimaryVideo.Duration > 0 {
		return p.PrimaryVideo.Duration
	}
	return p.Format.Duration
}

// ParseRate parses an ffprobe rate such as "30000/1001" or "25". Malformed
// or zero-denominator rates yield 0.
func ParseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// parseClock parses the "HH:MM:SS.fffffffff" form Matroska writes into its
// DURATION tag.
func parseClock(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return float64(h*3600+m*60) + sec
}
