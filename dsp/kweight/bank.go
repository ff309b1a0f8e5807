package kweight

import "github.com/cwbudde/algo-loudness/dsp/biquad"

// Bank applies K-weighting independently to each channel of a
// multichannel stream. Filter state is kept per channel between calls.
type Bank struct {
	chains     []*biquad.Chain
	sampleRate float64
}

// NewBank creates a K-weighting bank for the given sample rate and
// channel count.
//
// Panics if sampleRate <= 0 or channels <= 0.
func NewBank(sampleRate float64, channels int) *Bank {
	if sampleRate <= 0 {
		panic("kweight: sample rate must be positive")
	}

	if channels <= 0 {
		panic("kweight: channel count must be positive")
	}

	coeffs := Design(sampleRate)

	b := &Bank{
		chains:     make([]*biquad.Chain, channels),
		sampleRate: sampleRate,
	}
	for i := range b.chains {
		b.chains[i] = biquad.NewChain(coeffs)
	}

	return b
}

// ProcessChannel filters one channel's block in-place.
func (b *Bank) ProcessChannel(ch int, buf []float64) {
	b.chains[ch].ProcessBlock(buf)
}

// ProcessSample filters a single sample of the given channel.
func (b *Bank) ProcessSample(ch int, x float64) float64 {
	return b.chains[ch].ProcessSample(x)
}

// Channels returns the number of channels in the bank.
func (b *Bank) Channels() int {
	return len(b.chains)
}

// SampleRate returns the sample rate the coefficients were designed for.
func (b *Bank) SampleRate() float64 {
	return b.sampleRate
}

// Chain returns the cascade of the given channel, for response inspection.
func (b *Bank) Chain(ch int) *biquad.Chain {
	return b.chains[ch]
}

// Reset clears all per-channel filter state.
func (b *Bank) Reset() {
	for _, c := range b.chains {
		c.Reset()
	}
}
