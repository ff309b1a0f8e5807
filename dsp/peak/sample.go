package peak

import vecmath "github.com/cwbudde/algo-vecmath"

// SampleMeter tracks the maximum absolute sample value per channel, both
// over the meter lifetime and over the most recent batch.
type SampleMeter struct {
	max  []float64
	prev []float64
}

// NewSampleMeter creates a meter for the given channel count.
func NewSampleMeter(channels int) *SampleMeter {
	return &SampleMeter{
		max:  make([]float64, channels),
		prev: make([]float64, channels),
	}
}

// Channels returns the number of tracked channels.
func (m *SampleMeter) Channels() int {
	return len(m.max)
}

// StartBatch clears the per-batch maxima. Call once per ingestion batch,
// before processing its channels.
func (m *SampleMeter) StartBatch() {
	for i := range m.prev {
		m.prev[i] = 0
	}
}

// ProcessChannel folds one channel's block into the maxima.
func (m *SampleMeter) ProcessChannel(ch int, buf []float64) {
	p := vecmath.MaxAbs(buf)

	if p > m.prev[ch] {
		m.prev[ch] = p
	}

	if p > m.max[ch] {
		m.max[ch] = p
	}
}

// Peak returns the lifetime maximum absolute value of the channel.
func (m *SampleMeter) Peak(ch int) float64 {
	return m.max[ch]
}

// PrevPeak returns the maximum absolute value seen during the most recent
// batch.
func (m *SampleMeter) PrevPeak(ch int) float64 {
	return m.prev[ch]
}
