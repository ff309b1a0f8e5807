// Package blockstore retains gating-block energies for loudness
// aggregation.
//
// Two implementations of [Store] trade precision against memory:
// [Histogram] quantizes block loudness into 1000 fixed 0.1 LU buckets so
// arbitrarily long streams occupy constant memory, while [List] keeps
// exact energies (optionally bounded to a maximum history) at the cost of
// growth proportional to stream length. Both answer the threshold-gated
// sum and quantile queries the gating algorithm is built from.
package blockstore
