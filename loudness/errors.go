package loudness

import "errors"

var (
	// ErrInvalidConfiguration reports an out-of-range channel count,
	// sample rate, channel map or history length at construction.
	ErrInvalidConfiguration = errors.New("loudness: invalid configuration")

	// ErrInsufficientData reports a query made before enough audio has
	// been ingested, or an integrated/range query where no gating block
	// passed the absolute gate.
	ErrInsufficientData = errors.New("loudness: insufficient data")

	// ErrModeNotEnabled reports a query for a measurement the meter was
	// not configured to perform.
	ErrModeNotEnabled = errors.New("loudness: mode not enabled")

	// ErrInvalidChannel reports a per-channel query with a channel index
	// outside the configured range.
	ErrInvalidChannel = errors.New("loudness: invalid channel index")

	// ErrFrameAlignment reports an ingestion buffer whose length is not a
	// whole number of frames.
	ErrFrameAlignment = errors.New("loudness: buffer length not a multiple of channel count")
)
