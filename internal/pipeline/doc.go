// Package pipeline runs the cut-planning workflow for one recording in
// program order:
//
//	preflight -> probe -> streams -> plan -> locate -> outputs
//
// Outputs are a JSON manifest describing the extractions and chapter marks
// plus an optional chapter file. Caption resync is a separate step that
// reads the manifest's cut-boundary timeline once the external caption
// extractor has produced a SubRip file from the rejoined stream.
//
// A per-recording lock file prevents two runs against the same source.
// Every run gets a UUID that tags its log lines, its state database row,
// and its manifest.
package pipeline
