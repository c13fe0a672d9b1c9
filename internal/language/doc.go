// Package language provides unified language code normalization and mapping.
//
// Stream probes report languages as ISO 639-2 codes (both the terminology and
// bibliographic forms appear in broadcast captures) while users configure
// ISO 639-1 codes or English names. All conversions are consolidated here so
// stream selection compares like with like.
package language
