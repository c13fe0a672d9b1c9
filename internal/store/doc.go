// Package store persists byte-offset calibrations and run history in a
// SQLite database under the configured state directory.
//
// Calibrations are keyed by the recording's path, size, and modification
// time so a rewritten recording never reuses a stale measurement. Writes
// retry briefly on SQLITE_BUSY because a second tvcut process may hold the
// database while recording its own run.
package store
