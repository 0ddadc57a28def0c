package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/backmassage/framecopy/internal/ffmpeg"
)

// Options selects the optional, more expensive parts of a probe.
type Options struct {
	// CountFrames decodes the video stream to count frames exactly.
	CountFrames bool
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result. bin is the ffprobe executable.
func Probe(ctx context.Context, bin, path string, opts Options) (*ProbeResult, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
	}
	if opts.CountFrames {
		// "V" skips attached pictures, so the counted stream is the one
		// PrimaryVideo picks.
		args = append(args, "-count_frames", "-select_streams", "V:0")
	}
	args = append(args, path)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if cls := ffmpeg.Classify(stderr.String()); cls != nil {
			return nil, fmt.Errorf("ffprobe %q: %w: %w", path, cls, err)
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if len(raw.Streams) == 0 && raw.Format.Filename == "" {
		return nil, errors.New("parse ffprobe JSON: no format or streams")
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	PixFmt       string            `json:"pix_fmt"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	RFrameRate   string            `json:"r_frame_rate"`
	NbFrames     string            `json:"nb_frames"`
	NbReadFrames string            `json:"nb_read_frames"`
	Duration     string            `json:"duration"`
	StartTime    string            `json:"start_time"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: convertFormat(&raw.Format),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			vs := convertVideo(s)
			if !vs.IsAttachedPic && pr.PrimaryVideo == nil {
				pr.PrimaryVideo = &vs
			}
		case "audio":
			pr.AudioStreams = append(pr.AudioStreams, AudioStream{Index: s.Index, Codec: s.CodecName})
		}
	}
	return pr
}

func convertFormat(f *ffprobeFormat) FormatInfo {
	return FormatInfo{
		Filename:   f.Filename,
		NbStreams:  f.NbStreams,
		FormatName: f.FormatName,
		Duration:   parseFloat(f.Duration),
		Size:       parseInt64(f.Size),
		BitRate:    parseInt64(f.BitRate),
	}
}

func convertVideo(s *ffprobeStream) VideoStream {
	duration := parseFloat(s.Duration)
	if duration <= 0 {
		// Matroska and WebM carry the stream duration only as a tag.
		duration = parseClock(s.Tags["DURATION"])
	}
	return VideoStream{
		Index:         s.Index,
		Codec:         s.CodecName,
		PixFmt:        s.PixFmt,
		Width:         s.Width,
		Height:        s.Height,
		AvgFrameRate:  s.AvgFrameRate,
		RFrameRate:    s.RFrameRate,
		NbFrames:      parseInt(s.NbFrames),
		NbReadFrames:  parseInt(s.NbReadFrames),
		Duration:      duration,
		StartTime:     parseFloat(s.StartTime),
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
		Rotation:      rotation(s),
	}
}

// rotation returns the display rotation in degrees, normalized to
// [0, 360). The display matrix side data wins over the legacy rotate tag.
// rotation returns the clockwise display rotation. The display matrix
// angle is counter-clockwise.
func rotation(s *ffprobeStream) int {
	deg := 0
	if r, ok := s.Tags["rotate"]; ok {
		deg = parseInt(r)
	}
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" {
			deg = int(math.Round(-sd.Rotation))
			break
		}
	}
	return ((deg % 360) + 360) % 360
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	n, _ := strconv.Atoi(s)
	return n
}
