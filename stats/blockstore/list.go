package blockstore

import (
	"sort"

	"github.com/cwbudde/algo-loudness/dsp/core"
)

// List is an exact Store keeping every recorded block energy. With a
// positive maximum length it becomes a ring over the most recent blocks,
// bounding memory for long-running streams at the cost of forgetting old
// program material.
type List struct {
	energies []float64
	maxLen   int
	head     int

	scratch []float64 // reused by Quantiles
}

// NewList returns an exact store. maxBlocks <= 0 keeps the full history.
func NewList(maxBlocks int) *List {
	l := &List{maxLen: maxBlocks}
	if maxBlocks > 0 {
		l.energies = make([]float64, 0, maxBlocks)
	}

	return l
}

// Record appends one block energy, evicting the oldest when bounded.
func (l *List) Record(energy float64) {
	if l.maxLen <= 0 || len(l.energies) < l.maxLen {
		l.energies = append(l.energies, energy)
		return
	}

	// Gated queries are order-independent, so overwriting in place is
	// equivalent to a FIFO eviction.
	l.energies[l.head] = energy
	l.head = (l.head + 1) % l.maxLen
}

// Blocks returns the number of retained blocks.
func (l *List) Blocks() uint64 {
	return uint64(len(l.energies))
}

// SumAbove returns the energy sum and count of blocks at or above
// threshold.
func (l *List) SumAbove(threshold float64) (float64, uint64) {
	var (
		sum   float64
		count uint64
	)

	for _, e := range l.energies {
		if e >= threshold {
			sum += e
			count++
		}
	}

	return sum, count
}

// Quantiles sorts the gated block loudness values and returns the lo and
// hi ranked entries.
func (l *List) Quantiles(threshold, lo, hi float64) (float64, float64, bool) {
	l.scratch = l.scratch[:0]
	for _, e := range l.energies {
		if e >= threshold {
			l.scratch = append(l.scratch, core.EnergyToLoudness(e))
		}
	}

	n := uint64(len(l.scratch))
	if n == 0 {
		return 0, 0, false
	}

	sort.Float64s(l.scratch)

	return l.scratch[quantileRank(n, lo)], l.scratch[quantileRank(n, hi)], true
}

// Merge appends other's energies into l. Used for multi-meter queries.
func (l *List) Merge(other *List) {
	l.energies = append(l.energies, other.energies...)
}
