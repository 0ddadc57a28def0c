// Package fakeff stands in for the ffmpeg and ffprobe binaries in tests.
//
// A test binary re-executes itself with EnvVar set; RunIfRequested, called
// first thing from TestMain, then behaves like the real tool for the small
// argument surface framecopy uses. Fake media files are a one-line text
// header followed by raw rgb24 frames, so "decoding" returns the stored
// frames byte for byte and "encoding" stores what arrives on stdin.
package fakeff

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"testing"
)

// Environment variables read by the fake.
const (
	EnvVar         = "FRAMECOPY_FAKEFF"
	FailEnvVar     = "FRAMECOPY_FAKEFF_FAIL"
	EncodersEnvVar = "FRAMECOPY_FAKEFF_ENCODERS"
)

// Failure modes for FailEnvVar.
const (
	FailEncode     = "encode"   // Encoder exits before reading any frame.
	FailDecode     = "decode"   // Decoder exits with an error after its frames.
	TruncateDecode = "truncate" // Decoder emits only half of its last frame.
)

const magic = "FAKEFF"

var defaultEncoders = []string{"libvpx", "libvpx-vp9", "libx264", "mjpeg", "mpeg4"}

// Media describes a fake media file.
type Media struct {
	Width   int
	Height  int
	Rate    string // Defaults to "25/1".
	Frames  int
	Codec   string // Defaults to "fake".
	NoVideo bool   // Probe reports a single audio stream.

	// CoverArt adds an attached picture as stream 0, moving the video to
	// stream 1. Decoding the picture yields one frame of a different size.
	CoverArt bool
	// Rotation is reported as display matrix side data. Rotated media must
	// be decoded with -noautorotate.
	Rotation int
}

// VideoIndex returns the stream index of the media's video.
func (m Media) VideoIndex() int {
	if m.CoverArt {
		return 1
	}
	return 0
}

// FrameSize returns the byte length of one rgb24 frame.
func (m Media) FrameSize() int {
	return m.Width * m.Height * 3
}

// FrameByte is the value every byte of frame i holds in files written by
// WriteMedia.
func FrameByte(i int) byte {
	return byte(i%250 + 1)
}

// RunIfRequested runs the fake and exits when the process was started as a
// fake tool. Otherwise it returns immediately.
func RunIfRequested() {
	if os.Getenv(EnvVar) == "" {
		return
	}
	os.Exit(Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Install enables the fake for processes started by the current test and
// returns the binary to use for both ffmpeg and ffprobe.
func Install(t testing.TB) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("fakeff: resolve test binary: %v", err)
	}
	t.Setenv(EnvVar, "1")
	return exe
}

// SetFailure makes the fake fail in the given mode for the current test.
func SetFailure(t testing.TB, mode string) {
	t.Helper()
	t.Setenv(FailEnvVar, mode)
}

// SetEncoders replaces the encoder list the fake ffmpeg reports.
func SetEncoders(t testing.TB, names ...string) {
	t.Helper()
	if len(names) == 0 {
		names = []string{"-"}
	}
	t.Setenv(EncodersEnvVar, strings.Join(names, ","))
}

// WriteMedia writes a fake media file whose frame i is filled with
// FrameByte(i).
func WriteMedia(t testing.TB, path string, m Media) {
	t.Helper()
	size := m.FrameSize()
	pix := make([]byte, 0, size*m.Frames)
	for i := 0; i < m.Frames; i++ {
		pix = append(pix, bytes.Repeat([]byte{FrameByte(i)}, size)...)
	}
	if err := writeMedia(path, m, pix); err != nil {
		t.Fatalf("fakeff: write %s: %v", path, err)
	}
}

// ReadMedia reads a fake media file back.
func ReadMedia(path string) (Media, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Media{}, nil, err
	}
	line, pix, ok := bytes.Cut(data, []byte("\n"))
	if !ok {
		return Media{}, nil, errors.New("fakeff: missing header")
	}
	f := strings.Fields(string(line))
	if len(f) != 9 || f[0] != magic {
		return Media{}, nil, errors.New("fakeff: bad header")
	}
	var m Media
	var errs [4]error
	m.Width, errs[0] = strconv.Atoi(f[1])
	m.Height, errs[1] = strconv.Atoi(f[2])
	m.Rate = f[3]
	m.Frames, errs[2] = strconv.Atoi(f[4])
	m.Codec = f[5]
	m.NoVideo = f[6] == "true"
	m.CoverArt = f[7] == "true"
	m.Rotation, errs[3] = strconv.Atoi(f[8])
	if err := errors.Join(errs[:]...); err != nil {
		return Media{}, nil, fmt.Errorf("fakeff: bad header: %w", err)
	}
	if len(pix) != m.FrameSize()*m.Frames {
		return Media{}, nil, fmt.Errorf("fakeff: %d bytes of frames, header says %d", len(pix), m.FrameSize()*m.Frames)
	}
	return m, pix, nil
}

func writeMedia(path string, m Media, pix []byte) error {
	if m.Rate == "" {
		m.Rate = "25/1"
	}
	if m.Codec == "" {
		m.Codec = "fake"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %d %d %s %d %s %t %t %d\n",
		magic, m.Width, m.Height, m.Rate, m.Frames, m.Codec, m.NoVideo, m.CoverArt, m.Rotation)
	buf.Write(pix)
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Main runs the fake tool with args and returns its exit code.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	switch {
	case has(args, "-print_format"):
		return probe(args, stdout, stderr)
	case has(args, "-version"):
		fmt.Fprintln(stdout, "ffmpeg version 6.1-fake Copyright (c) 2000-2023 the FFmpeg developers")
		return 0
	case has(args, "-encoders"):
		return listEncoders(stdout)
	case has(args, "lavfi"):
		return testEncode(args, stderr)
	case has(args, "pipe:1"):
		return decode(args, stdout, stderr)
	case has(args, "pipe:0"):
		return encode(args, stdin, stderr)
	}
	fmt.Fprintf(stderr, "fakeff: unsupported arguments %q\n", args)
	return 2
}

func probe(args []string, stdout, stderr io.Writer) int {
	path := args[len(args)-1]
	m, pix, err := ReadMedia(path)
	if err != nil {
		return reportOpenError(path, err, stderr)
	}

	duration := "0.000000"
	if fps := parseRate(m.Rate); fps > 0 {
		duration = fmt.Sprintf("%.6f", float64(m.Frames)/fps)
	}

	var streams []any
	if m.NoVideo {
		streams = append(streams, map[string]any{"index": 0, "codec_type": "audio", "codec_name": "mp3"})
	} else {
		video := map[string]any{
			"index":          m.VideoIndex(),
			"codec_type":     "video",
			"codec_name":     m.Codec,
			"pix_fmt":        "yuv420p",
			"width":          m.Width,
			"height":         m.Height,
			"avg_frame_rate": m.Rate,
			"r_frame_rate":   m.Rate,
			"nb_frames":      strconv.Itoa(m.Frames),
			"duration":       duration,
			"start_time":     "0.000000",
			"disposition":    map[string]int{"default": 1, "attached_pic": 0},
		}
		if m.Rotation != 0 {
			video["side_data_list"] = []any{map[string]any{"side_data_type": "Display Matrix", "rotation": -m.Rotation}}
		}
		if has(args, "-count_frames") {
			video["nb_read_frames"] = strconv.Itoa(m.Frames)
		}
		cover := map[string]any{
			"index":       0,
			"codec_type":  "video",
			"codec_name":  "mjpeg",
			"width":       m.Width + 1,
			"height":      m.Height + 1,
			"disposition": map[string]int{"default": 0, "attached_pic": 1},
		}
		// "v:0" selects the first video stream, pictures included; "V:0"
		// the first that is not a picture.
		switch sel := argAfter(args, "-select_streams"); {
		case !m.CoverArt:
			streams = append(streams, video)
		case sel == "v:0":
			streams = append(streams, cover)
		case sel == "V:0":
			streams = append(streams, video)
		default:
			streams = append(streams, cover, video)
		}
	}
	out := map[string]any{
		"streams": streams,
		"format": map[string]any{
			"filename":    path,
			"nb_streams":  len(streams),
			"format_name": "fake",
			"duration":    duration,
			"size":        strconv.Itoa(len(pix)),
		},
	}
	if err := json.NewEncoder(stdout).Encode(out); err != nil {
		return 1
	}
	return 0
}

func listEncoders(stdout io.Writer) int {
	fmt.Fprintln(stdout, "Encoders:")
	fmt.Fprintln(stdout, " V..... = Video")
	fmt.Fprintln(stdout, " A..... = Audio")
	fmt.Fprintln(stdout, " ------")
	for _, name := range encoders() {
		fmt.Fprintf(stdout, " V....D %-20s fake %s encoder\n", name, name)
	}
	return 0
}

func encoders() []string {
	v := os.Getenv(EncodersEnvVar)
	switch v {
	case "":
		return defaultEncoders
	case "-":
		return nil
	}
	return strings.Split(v, ",")
}

func decode(args []string, stdout, stderr io.Writer) int {
	path := argAfter(args, "-i")
	m, pix, err := ReadMedia(path)
	if err != nil {
		return reportOpenError(path, err, stderr)
	}
	stream := argAfter(args, "-map")
	switch {
	case m.NoVideo:
		fmt.Fprintf(stderr, "Stream map '%s' matches no streams.\n", stream)
		return 1
	case m.CoverArt && stream == "0:0":
		// The attached picture: one still of the cover's size.
		_, _ = stdout.Write(bytes.Repeat([]byte{0xFF}, (m.Width+1)*(m.Height+1)*3))
		return 0
	case stream != "0:"+strconv.Itoa(m.VideoIndex()):
		fmt.Fprintf(stderr, "Stream map '%s' matches no streams.\n", stream)
		return 1
	case m.Rotation%180 != 0 && !has(args, "-noautorotate"):
		fmt.Fprintln(stderr, "fakeff: autorotation would transpose frames")
		return 1
	}

	mode := os.Getenv(FailEnvVar)
	if mode == TruncateDecode && m.Frames > 0 {
		pix = pix[:len(pix)-m.FrameSize()/2]
	}
	w := bufio.NewWriter(stdout)
	if _, err := w.Write(pix); err != nil {
		return 1
	}
	if err := w.Flush(); err != nil {
		return 1
	}
	if mode == FailDecode {
		fmt.Fprintln(stderr, "Error while decoding stream #0:0: Invalid data found when processing input")
		return 1
	}
	return 0
}

func encode(args []string, stdin io.Reader, stderr io.Writer) int {
	if os.Getenv(FailEnvVar) == FailEncode {
		fmt.Fprintln(stderr, "Error while opening encoder for output stream #0:0 - maybe incorrect parameters such as bit_rate, rate, width or height")
		return 1
	}

	var m Media
	wh := strings.SplitN(argAfter(args, "-s"), "x", 2)
	if len(wh) == 2 {
		m.Width, _ = strconv.Atoi(wh[0])
		m.Height, _ = strconv.Atoi(wh[1])
	}
	m.Rate = argAfter(args, "-r")
	m.Codec = argAfter(args, "-c:v")
	if !has(encoders(), m.Codec) {
		fmt.Fprintf(stderr, "Unknown encoder '%s'\n", m.Codec)
		return 1
	}
	if m.FrameSize() <= 0 {
		fmt.Fprintln(stderr, "Invalid argument")
		return 1
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return 1
	}
	m.Frames = len(data) / m.FrameSize()

	out := args[len(args)-1]
	if err := writeMedia(out, m, data[:m.Frames*m.FrameSize()]); err != nil {
		return reportOpenError(out, err, stderr)
	}
	return 0
}

// testEncode handles a synthetic-input encode to the null muxer.
func testEncode(args []string, stderr io.Writer) int {
	if os.Getenv(FailEnvVar) == FailEncode {
		fmt.Fprintln(stderr, "Error while opening encoder for output stream #0:0")
		return 1
	}
	if name := argAfter(args, "-c:v"); !has(encoders(), name) {
		fmt.Fprintf(stderr, "Unknown encoder '%s'\n", name)
		return 1
	}
	return 0
}

func reportOpenError(path string, err error, stderr io.Writer) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(stderr, "%s: No such file or directory\n", path)
	case errors.Is(err, fs.ErrPermission):
		fmt.Fprintf(stderr, "%s: Permission denied\n", path)
	default:
		fmt.Fprintf(stderr, "%s: Invalid data found when processing input\n", path)
	}
	return 1
}

func has(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
