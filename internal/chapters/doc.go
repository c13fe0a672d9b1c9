// Package chapters renders chapter marks from a cut plan into the files
// muxers consume: Matroska simple chapter text for mkvmerge and GPAC 3GPP
// timed-text XML for MP4Box.
package chapters
