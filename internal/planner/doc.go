// Package planner decides how a sink is encoded before its encoder starts.
// BuildPlan resolves the codec tag and copies the source's frame size and
// rate into a SinkPlan that the ffmpeg package turns into arguments.
package planner
