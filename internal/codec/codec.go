// Package codec resolves four-character codec tags into the ffmpeg encoder,
// output pixel format and fallback container that produce them.
//
// A tag packs four ASCII characters little-endian into 32 bits, so the
// value 808996950 reads as "VP80".
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Tag is a 32-bit four-character codec code.
type Tag uint32

// DefaultTag is the fixed tag every sink is opened with: VP8.
const DefaultTag Tag = 808996950

// ErrUnknownTag is returned by Lookup for tags with no registered encoder.
var ErrUnknownTag = errors.New("unknown codec tag")

// FourCC packs a four-character code into a Tag. Shorter codes are padded
// with spaces, longer ones truncated.
func FourCC(code string) Tag {
	var b [4]byte
	for i := range b {
		b[i] = ' '
		if i < len(code) {
			b[i] = code[i]
		}
	}
	return Tag(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}

// String returns the four characters of the tag, or a hex literal when any
// of them is not printable ASCII.
func (t Tag) String() string {
	b := []byte{byte(t), byte(t >> 8), byte(t >> 16), byte(t >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08X", uint32(t))
		}
	}
	return string(b)
}

// Codec describes how a tag is produced with ffmpeg.
type Codec struct {
	Tag     Tag
	Encoder string   // ffmpeg encoder name, e.g. "libvpx".
	PixFmt  string   // Pixel format handed to the encoder.
	Format  string   // Muxer used when the output extension says nothing.
	Args    []string // Fixed encoder arguments.
}

var registry = map[Tag]Codec{}

func register(code, encoder, pixFmt, format string, args ...string) {
	t := FourCC(code)
	registry[t] = Codec{Tag: t, Encoder: encoder, PixFmt: pixFmt, Format: format, Args: args}
}

func init() {
	register("VP80", "libvpx", "yuv420p", "webm", "-crf", "10", "-b:v", "1M")
	register("VP90", "libvpx-vp9", "yuv420p", "webm", "-crf", "31", "-b:v", "0")
	register("H264", "libx264", "yuv420p", "mp4")
	register("avc1", "libx264", "yuv420p", "mp4")
	register("X264", "libx264", "yuv420p", "matroska")
	register("MJPG", "mjpeg", "yuvj420p", "avi")
	register("mp4v", "mpeg4", "yuv420p", "mp4")
	register("FMP4", "mpeg4", "yuv420p", "avi")
	register("XVID", "mpeg4", "yuv420p", "avi", "-vtag", "XVID")
}

// Lookup returns the registered codec for t.
func Lookup(t Tag) (Codec, error) {
	c, ok := registry[t]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %s", ErrUnknownTag, t)
	}
	return c, nil
}

// knownExtensions are the output extensions ffmpeg maps to a muxer on its own.
var knownExtensions = map[string]bool{
	".webm": true,
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".avi":  true,
	".ogv":  true,
	".ts":   true,
	".flv":  true,
}

// FormatFor returns the muxer to force for output, or "" when ffmpeg can
// pick it from the file extension.
func (c Codec) FormatFor(output string) string {
	if knownExtensions[strings.ToLower(filepath.Ext(output))] {
		return ""
	}
	return c.Format
}
