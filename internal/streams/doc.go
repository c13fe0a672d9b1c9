// Package streams builds the stream catalog for a probed recording.
//
// A catalog lists every candidate video and audio elementary stream in probe
// order and marks exactly one of each kind as selected. Selection works on
// structured probe records (kind, id, language, main hint) rather than tool
// log text, so any prober that can fill a ProbeRecord can drive it. The
// demux stage consumes the selected (kind, id) pairs to request one
// elementary stream file per kind.
package streams
