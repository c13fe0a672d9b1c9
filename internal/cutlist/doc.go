// Package cutlist turns a recording's commercial cutlist into the segments
// that survive the cut.
//
// The Planner walks the disjoint, sorted remove intervals once and emits keep
// segments annotated with their position in the final timeline, a chapter
// mark per segment plus a terminal mark, and the Timeline of per-segment end
// positions that caption resynchronization consumes. Cutlists are validated
// before planning: unsorted or overlapping intervals are rejected instead of
// producing undefined segment boundaries.
//
// The package also reads the cutlist formats commercial detectors produce
// (Comskip frame lists, MPlayer EDL files, and plain second ranges).
package cutlist
