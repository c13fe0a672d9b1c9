// Package captions corrects caption timing after commercial breaks have been
// cut out of a recording.
//
// Captions are extracted from the rejoined stream but still run on the
// uncut clock: a caption that was on screen when a break began keeps its
// full display duration. Resync walks the cut-boundary timeline produced by
// the cutlist planner, clips every caption that straddles a boundary, and
// pulls all later captions earlier by the clipped amount. The package also
// carries a tolerant SubRip reader and writer and a file-level helper used
// by the pipeline's resync step.
package captions
