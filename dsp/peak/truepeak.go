package peak

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	// totalTaps is the full interpolation filter length, split evenly
	// across the phases of the chosen oversampling factor.
	totalTaps  = 48
	kaiserBeta = 5.0
)

// Factor returns the oversampling factor used for true-peak detection at
// the given sample rate: 4x below 96 kHz, 2x below 192 kHz. At 192 kHz and
// above inter-sample peaks are negligible and no oversampling is applied.
func Factor(sampleRate float64) int {
	switch {
	case sampleRate < 96000:
		return 4
	case sampleRate < 192000:
		return 2
	default:
		return 1
	}
}

// TruePeakMeter tracks the maximum oversampled magnitude per channel.
// With factor 1 it degenerates to plain sample-peak tracking.
type TruePeakMeter struct {
	factor       int
	tapsPerPhase int
	phases       [][]float64 // shared by all channels

	history [][]float64 // per-channel FIR delay line, newest last
	max     []float64
	prev    []float64
}

// NewTruePeakMeter creates a true-peak meter for the given sample rate and
// channel count.
func NewTruePeakMeter(sampleRate float64, channels int) *TruePeakMeter {
	factor := Factor(sampleRate)

	m := &TruePeakMeter{
		factor: factor,
		max:    make([]float64, channels),
		prev:   make([]float64, channels),
	}

	if factor > 1 {
		m.tapsPerPhase = totalTaps / factor
		m.phases = designPhases(factor, m.tapsPerPhase)

		m.history = make([][]float64, channels)
		for i := range m.history {
			m.history[i] = make([]float64, m.tapsPerPhase)
		}
	}

	return m
}

// designPhases builds the polyphase decomposition of a Kaiser-windowed
// sinc lowpass cut at the original Nyquist frequency. Each phase is
// normalized to unity DC gain so interpolated values sit on the input
// scale.
func designPhases(factor, tapsPerPhase int) [][]float64 {
	n := factor * tapsPerPhase
	center := float64(n-1) / 2

	phases := make([][]float64, factor)
	for p := range phases {
		phases[p] = make([]float64, tapsPerPhase)
	}

	for i := range n {
		t := (float64(i) - center) / float64(factor)

		h := sinc(t) * kaiserWindow(i, n, kaiserBeta)
		phases[i%factor][i/factor] = h
	}

	for _, phase := range phases {
		sum := vecmath.Sum(phase)
		for i := range phase {
			phase[i] /= sum
		}
	}

	return phases
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

func kaiserWindow(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return i0(beta*a) / i0(beta)
}

func i0(x float64) float64 {
	// Power series approximation.
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

// Channels returns the number of tracked channels.
func (m *TruePeakMeter) Channels() int {
	return len(m.max)
}

// Factor returns the oversampling factor in use.
func (m *TruePeakMeter) OversamplingFactor() int {
	return m.factor
}

// StartBatch clears the per-batch maxima. Call once per ingestion batch,
// before processing its channels.
func (m *TruePeakMeter) StartBatch() {
	for i := range m.prev {
		m.prev[i] = 0
	}
}

// ProcessChannel folds one channel's block of raw (unweighted) samples
// into the true-peak maxima.
func (m *TruePeakMeter) ProcessChannel(ch int, buf []float64) {
	if m.factor == 1 {
		p := vecmath.MaxAbs(buf)
		if p > m.prev[ch] {
			m.prev[ch] = p
		}

		if p > m.max[ch] {
			m.max[ch] = p
		}

		return
	}

	hist := m.history[ch]
	peak := m.prev[ch]

	for _, x := range buf {
		copy(hist, hist[1:])
		hist[m.tapsPerPhase-1] = x

		for _, phase := range m.phases {
			v := 0.0
			for tap, c := range phase {
				v += hist[tap] * c
			}

			if v < 0 {
				v = -v
			}

			if v > peak {
				peak = v
			}
		}
	}

	m.prev[ch] = peak
	if peak > m.max[ch] {
		m.max[ch] = peak
	}
}

// Peak returns the lifetime maximum oversampled magnitude of the channel.
func (m *TruePeakMeter) Peak(ch int) float64 {
	return m.max[ch]
}

// PrevPeak returns the maximum oversampled magnitude seen during the most
// recent batch.
func (m *TruePeakMeter) PrevPeak(ch int) float64 {
	return m.prev[ch]
}
