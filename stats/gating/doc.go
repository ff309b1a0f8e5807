// Package gating implements the two-stage block gating of ITU-R BS.1770-4
// and EBU Tech 3342 over recorded gating-block energies.
//
// Integrated loudness first discards blocks below the -70 LUFS absolute
// gate, then discards blocks more than 10 LU below the mean of the
// survivors and averages the rest. Loudness range applies the same scheme
// with a -20 LU relative gate and reports the spread between the 10th and
// 95th percentiles of the remaining distribution.
package gating
