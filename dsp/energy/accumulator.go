package energy

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	momentaryChunks = 4  // 400 ms window
	shortTermChunks = 30 // 3 s window
	shortTermHop    = 10 // 1 s hop
)

// Config holds construction parameters for an Accumulator.
type Config struct {
	// SampleRate of the incoming stream in Hz.
	SampleRate float64

	// Weights is the per-channel energy weight. A weight of 0 excludes
	// the channel from block energies entirely.
	Weights []float64

	// ShortTerm retains a 3 s ring instead of 400 ms and emits
	// short-term blocks every second.
	ShortTerm bool
}

// Accumulator maintains per-channel rings of squared samples and running
// window sums, emitting gating-block energies at chunk boundaries.
type Accumulator struct {
	weights []float64

	chunkSamples int // samples per 100 ms chunk
	momWindow    int
	stWindow     int
	ringSize     int

	rings [][]float64 // squared filtered samples, shared write position
	pos   int

	momSums []float64
	stSums  []float64

	chunkFill    int
	chunkCount   int64
	totalSamples int64

	// emission scratch, reused across Push calls
	momBlocks []float64
	stBlocks  []float64
}

// New creates an Accumulator. Panics if the sample rate is not positive or
// no channel weights are given; callers validate configuration upstream.
func New(cfg Config) *Accumulator {
	if cfg.SampleRate <= 0 {
		panic("energy: sample rate must be positive")
	}

	if len(cfg.Weights) == 0 {
		panic("energy: at least one channel weight required")
	}

	chunk := int((cfg.SampleRate + 5) / 10)
	if chunk < 1 {
		chunk = 1
	}

	a := &Accumulator{
		weights:      append([]float64(nil), cfg.Weights...),
		chunkSamples: chunk,
		momWindow:    momentaryChunks * chunk,
		stWindow:     shortTermChunks * chunk,
	}

	a.ringSize = a.momWindow
	if cfg.ShortTerm {
		a.ringSize = a.stWindow
	} else {
		a.stWindow = 0
	}

	channels := len(cfg.Weights)
	a.rings = make([][]float64, channels)
	for i := range a.rings {
		a.rings[i] = make([]float64, a.ringSize)
	}

	a.momSums = make([]float64, channels)
	if cfg.ShortTerm {
		a.stSums = make([]float64, channels)
	}

	return a
}

// Channels returns the number of channels the accumulator was built for.
func (a *Accumulator) Channels() int {
	return len(a.rings)
}

// RingSamples returns the number of trailing samples retained per channel.
func (a *Accumulator) RingSamples() int {
	return a.ringSize
}

// TotalSamples returns the number of frames ingested so far.
func (a *Accumulator) TotalSamples() int64 {
	return a.totalSamples
}

// Push integrates frames samples of per-channel filtered audio.
// blocks[ch][:frames] is channel ch's contiguous data.
//
// It returns the momentary (400 ms / 100 ms) and short-term (3 s / 1 s)
// gating-block energies completed during this call. The returned slices are
// reused by the next Push.
func (a *Accumulator) Push(blocks [][]float64, frames int) (momentary, shortTerm []float64) {
	a.momBlocks = a.momBlocks[:0]
	a.stBlocks = a.stBlocks[:0]

	off := 0
	for off < frames {
		n := frames - off
		if room := a.chunkSamples - a.chunkFill; n > room {
			n = room
		}

		for ch := range a.rings {
			a.pushChannel(ch, blocks[ch][off:off+n])
		}

		a.pos = (a.pos + n) % a.ringSize
		a.totalSamples += int64(n)

		a.chunkFill += n
		if a.chunkFill == a.chunkSamples {
			a.chunkFill = 0
			a.chunkCount++
			a.emit()
		}

		off += n
	}

	return a.momBlocks, a.stBlocks
}

// pushChannel squares chunk into the ring and updates the running window
// sums. Evicted energy is read before the ring segment is overwritten,
// which also covers the case where the oldest window element is the slot
// being rewritten.
func (a *Accumulator) pushChannel(ch int, chunk []float64) {
	n := len(chunk)
	ring := a.rings[ch]

	a.momSums[ch] -= a.ringSum(ring, a.pos-a.momWindow, n)
	if a.stSums != nil {
		a.stSums[ch] -= a.ringSum(ring, a.pos-a.stWindow, n)
	}

	added := a.writeSquares(ring, chunk)

	a.momSums[ch] += added
	if a.momSums[ch] < 0 {
		a.momSums[ch] = 0
	}

	if a.stSums != nil {
		a.stSums[ch] += added
		if a.stSums[ch] < 0 {
			a.stSums[ch] = 0
		}
	}
}

// writeSquares stores chunk^2 at the current write position and returns the
// energy added. Chunks never exceed 100 ms, so at most one wrap occurs.
func (a *Accumulator) writeSquares(ring, chunk []float64) float64 {
	n := len(chunk)

	first := n
	if a.pos+first > a.ringSize {
		first = a.ringSize - a.pos
	}

	vecmath.MulBlock(ring[a.pos:a.pos+first], chunk[:first], chunk[:first])
	added := vecmath.Sum(ring[a.pos : a.pos+first])

	if rest := n - first; rest > 0 {
		vecmath.MulBlock(ring[:rest], chunk[first:], chunk[first:])
		added += vecmath.Sum(ring[:rest])
	}

	return added
}

// ringSum sums n ring values starting at the (possibly negative) logical
// index start.
func (a *Accumulator) ringSum(ring []float64, start, n int) float64 {
	start %= a.ringSize
	if start < 0 {
		start += a.ringSize
	}

	if start+n <= a.ringSize {
		return vecmath.Sum(ring[start : start+n])
	}

	return vecmath.Sum(ring[start:]) + vecmath.Sum(ring[:start+n-a.ringSize])
}

func (a *Accumulator) emit() {
	if a.chunkCount >= momentaryChunks {
		a.momBlocks = append(a.momBlocks, a.weightedMean(a.momSums, a.momWindow))
	}

	if a.stSums != nil && a.chunkCount >= shortTermChunks &&
		(a.chunkCount-shortTermChunks)%shortTermHop == 0 {
		a.stBlocks = append(a.stBlocks, a.weightedMean(a.stSums, a.stWindow))
	}
}

func (a *Accumulator) weightedMean(sums []float64, window int) float64 {
	total := 0.0
	for ch, w := range a.weights {
		if w == 0 {
			continue
		}

		total += w * sums[ch] / float64(window)
	}

	return total
}

// MomentaryEnergy returns the weighted mean-square energy of the most
// recent 400 ms. The second return is false until a full window has been
// ingested.
func (a *Accumulator) MomentaryEnergy() (float64, bool) {
	if a.totalSamples < int64(a.momWindow) {
		return 0, false
	}

	return a.weightedMean(a.momSums, a.momWindow), true
}

// ShortTermEnergy returns the weighted mean-square energy of the most
// recent 3 s. The second return is false if the short-term window is
// disabled or not yet full.
func (a *Accumulator) ShortTermEnergy() (float64, bool) {
	if a.stSums == nil || a.totalSamples < int64(a.stWindow) {
		return 0, false
	}

	return a.weightedMean(a.stSums, a.stWindow), true
}

// WindowEnergy returns the weighted mean-square energy of the most recent
// samples frames. The second return is false if the window exceeds the
// retained ring or has not been fully ingested yet.
func (a *Accumulator) WindowEnergy(samples int) (float64, bool) {
	if samples <= 0 || samples > a.ringSize || a.totalSamples < int64(samples) {
		return 0, false
	}

	total := 0.0
	for ch, w := range a.weights {
		if w == 0 {
			continue
		}

		total += w * a.ringSum(a.rings[ch], a.pos-samples, samples) / float64(samples)
	}

	return total, true
}
