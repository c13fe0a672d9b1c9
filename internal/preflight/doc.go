// Package preflight provides readiness checks run before a recording is
// processed.
//
// The pipeline calls RunAll before probing a recording. A failed required
// check stops the run before any tool is started. The CLI "doctor" command
// uses the same checks to display environment health.
//
// Checks are gated by the preflight.enabled config toggle.
package preflight
