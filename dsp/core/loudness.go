package core

import "math"

// ReferenceOffset is the BS.1770 reference-level offset in LU. A block with
// mean-square energy E has loudness ReferenceOffset + 10*log10(E) LUFS, so
// that a full-scale 997 Hz sine reads -3.01 LUFS after K-weighting.
const ReferenceOffset = -0.691

// EnergyToLoudness converts a mean-square energy to loudness in LUFS.
// Returns -Inf for zero energy.
func EnergyToLoudness(energy float64) float64 {
	if energy <= 0 {
		return math.Inf(-1)
	}

	return ReferenceOffset + 10*math.Log10(energy)
}

// LoudnessToEnergy converts a loudness in LUFS to mean-square energy.
func LoudnessToEnergy(lufs float64) float64 {
	return math.Pow(10, (lufs-ReferenceOffset)/10)
}
