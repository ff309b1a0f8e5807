package blockstore

// Store records gating-block energies and answers threshold-gated
// aggregate queries. Thresholds are mean-square energies, inclusive.
type Store interface {
	// Record adds one block energy.
	Record(energy float64)

	// Blocks returns the number of recorded blocks.
	Blocks() uint64

	// SumAbove returns the energy sum and count of blocks at or above
	// threshold.
	SumAbove(threshold float64) (sum float64, count uint64)

	// Quantiles returns the block loudness in LUFS at the lo and hi
	// distribution fractions among blocks at or above threshold,
	// weighted by occurrence. ok is false when no block qualifies.
	Quantiles(threshold, lo, hi float64) (loLUFS, hiLUFS float64, ok bool)
}

// quantileRank maps a distribution fraction to a rank among n ordered
// values, mirroring the EBU Tech 3342 percentile convention.
func quantileRank(n uint64, frac float64) uint64 {
	return uint64(float64(n-1)*frac + 0.5)
}
