// Package energy accumulates mean-square block energies over sliding
// windows of a K-weighted multichannel stream.
//
// The accumulator advances in 100 ms chunks. Each completed chunk closes a
// 400 ms momentary window (100 ms hop) and, when the short-term window is
// enabled, every tenth chunk closes a 3 s short-term window (1 s hop). Block
// energies combine channels using per-channel weights, so surround channels
// can count more than front channels and unused channels not at all.
package energy
