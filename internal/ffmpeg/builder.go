package ffmpeg

import (
	"strconv"

	"github.com/backmassage/framecopy/internal/codec"
	"github.com/backmassage/framecopy/internal/planner"
)

// preamble is shared by every ffmpeg invocation.
func preamble() []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
}

// DecodeArgs returns the arguments that decode stream (an absolute stream
// index of input, as ffprobe reports it) into packed rgb24 frames on
// stdout, one per decoded frame. Frames keep their stored orientation:
// display rotation is not applied, so every frame has the probed size.
func DecodeArgs(input string, stream int) []string {
	args := preamble()
	args = append(args,
		"-noautorotate",
		"-i", input,
		"-map", "0:"+strconv.Itoa(stream),
		"-an", "-sn", "-dn",
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	return args
}

// EncodeArgs returns the arguments that encode packed rgb24 frames read
// from stdin into plan.OutputPath. Input and output share plan's size and
// rate; no scaling or rate conversion is applied.
func EncodeArgs(plan *planner.SinkPlan) []string {
	args := preamble()
	args = append(args, "-y")

	// --- Input: raw frames on stdin ---
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", strconv.Itoa(plan.Width)+"x"+strconv.Itoa(plan.Height),
		"-r", plan.RateArg(),
		"-i", "pipe:0",
	)

	// --- Video codec ---
	args = append(args, "-an", "-c:v", plan.Codec.Encoder)
	args = append(args, plan.Codec.Args...)
	args = append(args, "-pix_fmt", plan.Codec.PixFmt)

	// --- Output ---
	if plan.Format != "" {
		args = append(args, "-f", plan.Format)
	}
	args = append(args, plan.OutputPath)
	return args
}

// ProbeEncodeArgs returns the arguments for a short synthetic encode with
// c's encoder into the null muxer, used to check the encoder works.
func ProbeEncodeArgs(c codec.Codec) []string {
	args := preamble()
	args = append(args,
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-c:v", c.Encoder,
	)
	args = append(args, c.Args...)
	args = append(args, "-pix_fmt", c.PixFmt, "-f", "null", "-")
	return args
}
