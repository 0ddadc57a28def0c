// Package pipeline runs a single frame copy: open the source, open a sink
// with the source's size and rate, copy every frame in order, and release
// both handles.
//
// Open failures are fatal and typed (SourceOpenError, SinkOpenError).
// Frame write failures are counted and skipped unless the run is strict,
// in which case the first one ends the run with a CopyError.
package pipeline
