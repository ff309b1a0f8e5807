package loudness

import (
	"fmt"
	"time"
)

const (
	minChannels = 1
	maxChannels = 64

	minSampleRate = 16.0
	maxSampleRate = 2822400.0
)

type config struct {
	sampleRate float64
	channels   int
	modes      Mode
	channelMap []Channel
	weights    []float64
	maxHistory time.Duration
}

// Option configures a Meter at construction.
type Option func(*config)

// WithSampleRate sets the input sample rate in Hz. Defaults to 48000.
func WithSampleRate(rate float64) Option {
	return func(c *config) { c.sampleRate = rate }
}

// WithChannels sets the number of interleaved input channels. Defaults
// to 2.
func WithChannels(channels int) Option {
	return func(c *config) { c.channels = channels }
}

// WithModes selects the measurements to perform. Implied dependency
// modes are enabled automatically. Defaults to ModeIntegrated.
func WithModes(modes Mode) Option {
	return func(c *config) { c.modes = modes }
}

// WithChannelMap assigns a position to every input channel, replacing
// the conventional layout derived from the channel count. The map length
// must match the channel count.
func WithChannelMap(channelMap []Channel) Option {
	return func(c *config) { c.channelMap = append([]Channel(nil), channelMap...) }
}

// WithChannelWeights overrides the per-channel loudness weights derived
// from the channel map. Weights must be non-negative; a weight of 0
// excludes the channel from loudness while keeping its peak metering.
func WithChannelWeights(weights []float64) Option {
	return func(c *config) { c.weights = append([]float64(nil), weights...) }
}

// WithMaxHistory bounds how much gating-block history the meter retains
// for integrated loudness and loudness range, turning unbounded stores
// into rings over the most recent history. Histories shorter than the
// longest measurement window are raised to it. Has no effect with
// ModeHistogram, which is constant-memory already.
func WithMaxHistory(history time.Duration) Option {
	return func(c *config) { c.maxHistory = history }
}

func (c *config) validate() error {
	if c.channels < minChannels || c.channels > maxChannels {
		return fmt.Errorf("%w: channel count %d outside [%d, %d]",
			ErrInvalidConfiguration, c.channels, minChannels, maxChannels)
	}

	if c.sampleRate < minSampleRate || c.sampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate %g outside [%g, %g]",
			ErrInvalidConfiguration, c.sampleRate, minSampleRate, maxSampleRate)
	}

	if !c.modes.Has(ModeMomentary) {
		return fmt.Errorf("%w: no measurement mode selected", ErrInvalidConfiguration)
	}

	if c.channelMap != nil && len(c.channelMap) != c.channels {
		return fmt.Errorf("%w: channel map has %d entries for %d channels",
			ErrInvalidConfiguration, len(c.channelMap), c.channels)
	}

	for _, ch := range c.channelMap {
		if !ch.valid() {
			return fmt.Errorf("%w: unknown channel kind %d", ErrInvalidConfiguration, ch)
		}
	}

	if c.weights != nil && len(c.weights) != c.channels {
		return fmt.Errorf("%w: %d weights for %d channels",
			ErrInvalidConfiguration, len(c.weights), c.channels)
	}

	for _, w := range c.weights {
		if w < 0 {
			return fmt.Errorf("%w: negative channel weight %g", ErrInvalidConfiguration, w)
		}
	}

	if c.maxHistory < 0 {
		return fmt.Errorf("%w: negative history %s", ErrInvalidConfiguration, c.maxHistory)
	}

	return nil
}
