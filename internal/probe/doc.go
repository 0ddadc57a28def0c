// Package probe provides ffprobe-based media inspection and typed result
// structures. One JSON call per file yields the container format and the
// primary video stream's size, rate, frame counts and duration.
package probe
