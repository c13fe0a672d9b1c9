// Package locate resolves keep segments into the boundaries an external
// splitter needs.
//
// Two strategies exist. TimeBased hands start time and duration straight
// through. ByteOffset converts segment edges to frame numbers and resolves
// each frame to a byte offset in the source by remuxing that many frames and
// counting the bytes ffmpeg emits. A one-time calibration pass over the full
// recording measures how many bytes of ancillary data the remux drops, and
// every measured offset is corrected proportionally to its frame position.
//
// FFmpegMeasurer is the production Measurer. It drains ffmpeg's stdout and
// stderr concurrently and joins both readers before combining their counts.
package locate
