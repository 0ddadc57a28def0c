// Package video provides the handles a frame copy runs on: Source decodes
// an input into Frames and Sink encodes Frames into an output. Both are
// backed by an ffmpeg process exchanging packed rgb24 frames over a pipe.
package video
