// Package peak tracks per-channel signal maxima.
//
// [SampleMeter] keeps the running maximum absolute sample value.
// [TruePeakMeter] additionally upsamples each channel with a polyphase
// Kaiser-windowed sinc interpolator to catch inter-sample peaks that the
// sample grid misses. Both maxima only ever grow for the lifetime of a
// meter; fresh measurements need fresh meters.
package peak
