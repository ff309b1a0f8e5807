package kweight

import (
	"math"

	"github.com/cwbudde/algo-loudness/dsp/biquad"
)

// Analog prototype parameters from ITU-R BS.1770-4. The shelf gain and
// corner frequencies are the exact values the standard's digital
// coefficients were derived from, so the bilinear-transformed response
// matches the published 48 kHz tables at any sample rate.
const (
	shelfFreq  = 1681.974450955533
	shelfGain  = 3.999843853973347 // dB
	shelfQ     = 0.7071752369554196
	shelfVbExp = 0.4996667741545416

	highpassFreq = 38.13547087602444
	highpassQ    = 0.5003270373238773
)

// PreFilter designs the first K-weighting stage, a high-frequency shelf
// approximating head diffraction, for the given sample rate.
func PreFilter(sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * shelfFreq / sampleRate)
	vh := math.Pow(10, shelfGain/20)
	vb := math.Pow(vh, shelfVbExp)

	a0 := 1 + k/shelfQ + k*k

	return biquad.Coefficients{
		B0: (vh + vb*k/shelfQ + k*k) / a0,
		B1: 2 * (k*k - vh) / a0,
		B2: (vh - vb*k/shelfQ + k*k) / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/shelfQ + k*k) / a0,
	}
}

// Highpass designs the second K-weighting stage, the RLB high-pass curve,
// for the given sample rate.
func Highpass(sampleRate float64) biquad.Coefficients {
	k := math.Tan(math.Pi * highpassFreq / sampleRate)

	a0 := 1 + k/highpassQ + k*k

	return biquad.Coefficients{
		B0: 1 / a0,
		B1: -2 / a0,
		B2: 1 / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/highpassQ + k*k) / a0,
	}
}

// Design returns both K-weighting stages in cascade order for the given
// sample rate.
func Design(sampleRate float64) []biquad.Coefficients {
	return []biquad.Coefficients{PreFilter(sampleRate), Highpass(sampleRate)}
}
