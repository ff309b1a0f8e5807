// Package loudness measures program loudness per EBU R128 and
// ITU-R BS.1770-4.
//
// A [Meter] ingests interleaved PCM and answers momentary, short-term,
// integrated and custom-window loudness queries in LUFS, loudness range
// (LRA) in LU, and per-channel sample and true peaks. The measurement
// pipeline K-weights each channel, accumulates 100 ms energy chunks into
// overlapping gating blocks, and applies the BS.1770 two-stage gate at
// query time.
//
// Which measurements a meter performs is selected up front through
// [Mode] flags; queries for modes that were not enabled return
// [ErrModeNotEnabled]. Meters are not safe for concurrent use.
package loudness
