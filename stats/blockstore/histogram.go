package blockstore

import (
	"github.com/cwbudde/algo-loudness/dsp/core"
)

const (
	numBuckets    = 1000
	minLoudness   = -70.0 // LUFS, bottom boundary of the lowest bucket
	bucketWidth   = 0.1   // LU
	bucketHalfway = bucketWidth / 2
)

// bucketEnergies holds the mean-square energy at each bucket's center
// loudness, precomputed once since every query weights counts by them.
var bucketEnergies [numBuckets]float64

// floorEnergy is the energy of the bottom boundary; quieter blocks cannot
// be represented and are dropped at record time, which is indistinguishable
// from exact storage under the -70 LUFS absolute gate.
var floorEnergy float64

func init() {
	for i := range bucketEnergies {
		center := minLoudness + bucketWidth*float64(i) + bucketHalfway
		bucketEnergies[i] = core.LoudnessToEnergy(center)
	}

	floorEnergy = core.LoudnessToEnergy(minLoudness)
}

// Histogram is a constant-memory Store quantizing block loudness into
// fixed 0.1 LU buckets spanning [-70, +30) LUFS. Bucket counts only grow.
type Histogram struct {
	counts [numBuckets]uint64
	total  uint64
}

// NewHistogram returns an empty histogram store.
func NewHistogram() *Histogram {
	return &Histogram{}
}

// Record quantizes one block energy into its loudness bucket.
func (h *Histogram) Record(energy float64) {
	if energy < floorEnergy {
		return
	}

	idx := int((core.EnergyToLoudness(energy) - minLoudness) / bucketWidth)
	if idx >= numBuckets {
		idx = numBuckets - 1
	}

	h.counts[idx]++
	h.total++
}

// Blocks returns the number of recorded blocks.
func (h *Histogram) Blocks() uint64 {
	return h.total
}

// SumAbove returns the energy sum and count of blocks at or above
// threshold, using bucket-center energies.
func (h *Histogram) SumAbove(threshold float64) (float64, uint64) {
	var (
		sum   float64
		count uint64
	)

	for i, c := range h.counts {
		if c == 0 || bucketEnergies[i] < threshold {
			continue
		}

		sum += float64(c) * bucketEnergies[i]
		count += c
	}

	return sum, count
}

// Quantiles walks the cumulative gated counts to the lo and hi ranks and
// returns the bucket-center loudness at each.
func (h *Histogram) Quantiles(threshold, lo, hi float64) (float64, float64, bool) {
	_, n := h.SumAbove(threshold)
	if n == 0 {
		return 0, 0, false
	}

	loRank := quantileRank(n, lo)
	hiRank := quantileRank(n, hi)

	var (
		cum        uint64
		loL, hiL   float64
		foundLo    bool
		foundRanks bool
	)

	for i, c := range h.counts {
		if c == 0 || bucketEnergies[i] < threshold {
			continue
		}

		cum += c

		if !foundLo && cum > loRank {
			loL = bucketLoudness(i)
			foundLo = true
		}

		if cum > hiRank {
			hiL = bucketLoudness(i)
			foundRanks = true

			break
		}
	}

	if !foundRanks {
		return 0, 0, false
	}

	return loL, hiL, true
}

// Merge adds other's bucket counts into h. Used for multi-meter queries.
func (h *Histogram) Merge(other *Histogram) {
	for i, c := range other.counts {
		h.counts[i] += c
	}

	h.total += other.total
}

func bucketLoudness(i int) float64 {
	return minLoudness + bucketWidth*float64(i) + bucketHalfway
}
