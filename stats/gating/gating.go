package gating

import (
	"math"

	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/stats/blockstore"
)

const (
	// AbsoluteGateLUFS is the absolute gate below which blocks never
	// contribute to integrated loudness or loudness range.
	AbsoluteGateLUFS = -70.0

	// relativeGateLU is the relative gate offset for integrated loudness.
	relativeGateLU = -10.0

	// rangeGateLU is the relative gate offset for loudness range.
	rangeGateLU = -20.0

	rangeLowerFraction = 0.10
	rangeUpperFraction = 0.95
)

// Integrated computes the gated integrated loudness in LUFS across the
// given stores. ok is false when no block passes the gates.
func Integrated(stores ...blockstore.Store) (float64, bool) {
	relEnergy, ok := relativeGateEnergy(relativeGateLU, stores)
	if !ok {
		return 0, false
	}

	var (
		sum   float64
		count uint64
	)

	for _, s := range stores {
		ss, sc := s.SumAbove(relEnergy)

		sum += ss
		count += sc
	}

	if count == 0 {
		return 0, false
	}

	return core.EnergyToLoudness(sum / float64(count)), true
}

// RelativeThreshold returns the relative gate threshold in LUFS that
// Integrated applies, 10 LU below the mean loudness of blocks passing the
// absolute gate. When no block passes the absolute gate it returns the
// absolute gate itself.
func RelativeThreshold(stores ...blockstore.Store) float64 {
	relEnergy, ok := relativeGateEnergy(relativeGateLU, stores)
	if !ok {
		return AbsoluteGateLUFS
	}

	return core.EnergyToLoudness(relEnergy)
}

// Range computes the loudness range (LRA) in LU across the given stores.
// ok is false when no block passes the gates or the stores cannot be
// combined.
//
// Multi-store queries merge the stores' block populations: histogram
// stores merge bucket counts, exact stores concatenate energies. Mixing
// store kinds is not supported.
func Range(stores ...blockstore.Store) (float64, bool) {
	merged, ok := mergeStores(stores)
	if !ok {
		return 0, false
	}

	relEnergy, ok := relativeGateEnergy(rangeGateLU, []blockstore.Store{merged})
	if !ok {
		return 0, false
	}

	lo, hi, ok := merged.Quantiles(relEnergy, rangeLowerFraction, rangeUpperFraction)
	if !ok {
		return 0, false
	}

	return hi - lo, true
}

// relativeGateEnergy derives the relative gate threshold energy: the mean
// energy of blocks passing the absolute gate, lowered by gateLU. The
// threshold never drops below the absolute gate.
func relativeGateEnergy(gateLU float64, stores []blockstore.Store) (float64, bool) {
	absEnergy := core.LoudnessToEnergy(AbsoluteGateLUFS)

	var (
		sum   float64
		count uint64
	)

	for _, s := range stores {
		ss, sc := s.SumAbove(absEnergy)

		sum += ss
		count += sc
	}

	if count == 0 {
		return 0, false
	}

	// Lowering loudness by gateLU scales energy by 10^(gateLU/10).
	rel := (sum / float64(count)) * math.Pow(10, gateLU/10)
	if rel < absEnergy {
		rel = absEnergy
	}

	return rel, true
}

// mergeStores combines multiple stores of the same kind into one view of
// the joint block population.
func mergeStores(stores []blockstore.Store) (blockstore.Store, bool) {
	if len(stores) == 1 {
		return stores[0], true
	}

	switch stores[0].(type) {
	case *blockstore.Histogram:
		merged := blockstore.NewHistogram()
		for _, s := range stores {
			h, ok := s.(*blockstore.Histogram)
			if !ok {
				return nil, false
			}

			merged.Merge(h)
		}

		return merged, true

	case *blockstore.List:
		merged := blockstore.NewList(0)
		for _, s := range stores {
			l, ok := s.(*blockstore.List)
			if !ok {
				return nil, false
			}

			merged.Merge(l)
		}

		return merged, true
	}

	return nil, false
}
