package loudness

// Mode selects which measurements a Meter performs. Modes form a
// dependency lattice: enabling a measurement implies everything it is
// built from, and Normalize resolves the closure.
type Mode uint32

const (
	// ModeMomentary enables the 400 ms momentary loudness.
	ModeMomentary Mode = 1 << 0

	// ModeShortTerm enables the 3 s short-term loudness. Implies
	// ModeMomentary.
	ModeShortTerm Mode = 1<<1 | ModeMomentary

	// ModeIntegrated enables gated integrated loudness over the whole
	// stream. Implies ModeMomentary.
	ModeIntegrated Mode = 1<<2 | ModeMomentary

	// ModeLoudnessRange enables the loudness range (LRA) measurement.
	// Implies ModeShortTerm.
	ModeLoudnessRange Mode = 1<<3 | ModeShortTerm

	// ModeSamplePeak enables per-channel sample-peak tracking.
	ModeSamplePeak Mode = 1<<4 | ModeMomentary

	// ModeTruePeak enables per-channel oversampled true-peak tracking.
	// Implies ModeSamplePeak.
	ModeTruePeak Mode = 1<<5 | ModeMomentary | ModeSamplePeak

	// ModeHistogram stores gating blocks in constant-memory histograms
	// instead of exact lists. Affects memory use and rounding of
	// integrated loudness and LRA, not which queries are available.
	ModeHistogram Mode = 1 << 6
)

// Normalize returns the mode with all implied dependency bits set.
func (m Mode) Normalize() Mode {
	if m.Has(ModeTruePeak) {
		m |= ModeSamplePeak
	}

	if m.Has(ModeLoudnessRange) {
		m |= ModeShortTerm
	}

	if m&(ModeShortTerm|ModeIntegrated|ModeSamplePeak|ModeTruePeak) != 0 {
		m |= ModeMomentary
	}

	return m
}

// Has reports whether every bit of other is set in m.
func (m Mode) Has(other Mode) bool {
	return m&other == other
}
