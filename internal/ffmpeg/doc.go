// Package ffmpeg builds and runs the ffmpeg processes behind a video source
// and sink.
//
// A source is a decoder writing packed rgb24 frames to stdout; a sink is an
// encoder reading them from stdin. Both share the argument skeleton in
// builder.go. Process keeps the tail of stderr so that failures can be
// reported and classified against the sentinel errors in errors.go.
package ffmpeg
