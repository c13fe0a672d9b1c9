// Package logging assembles structured slog loggers and formatting helpers
// used across tvcut.
//
// It owns the console and JSON handlers, routes output to the terminal and
// an optional JSON log file, and exposes context-aware helpers so pipeline
// code tags every line with the run ID, stage, and source recording.
// Per-stage level overrides come from configuration. A no-op logger is
// available for tests and wiring code that cannot fail.
package logging
