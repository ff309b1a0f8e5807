// Package kweight implements the ITU-R BS.1770 K-weighting filter.
//
// The weighting is a cascade of two second-order stages: a high-frequency
// shelf modeling the acoustic effect of the head, followed by the RLB
// high-pass curve. [Design] produces the digital coefficients for a given
// sample rate; [Bank] runs one cascade per channel of a multichannel stream.
package kweight
