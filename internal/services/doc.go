// Package services defines shared utilities consumed by the planning stages
// and the thin wrappers around external tools.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source paths for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (invalid input, configuration, measurement, external tool) so the CLI
//     can report them consistently and pick an exit code.
//
// Nothing in the core retries automatically; the markers exist so callers can
// decide between aborting and skipping a recording.
package services
