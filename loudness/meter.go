package loudness

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-loudness/dsp/core"
	"github.com/cwbudde/algo-loudness/dsp/energy"
	"github.com/cwbudde/algo-loudness/dsp/kweight"
	"github.com/cwbudde/algo-loudness/dsp/peak"
	"github.com/cwbudde/algo-loudness/stats/blockstore"
	"github.com/cwbudde/algo-loudness/stats/gating"
)

const (
	momentaryWindow = 400 * time.Millisecond
	shortTermWindow = 3 * time.Second

	momentaryHop = 100 * time.Millisecond
	shortTermHop = time.Second
)

// Meter measures the loudness of one interleaved PCM stream. Create it
// with New, feed it with AddFrames, and query at any time; all
// measurements run incrementally, so ingestion cost does not depend on
// which queries are made or how often.
type Meter struct {
	sampleRate float64
	channels   int
	modes      Mode
	channelMap []Channel

	bank *kweight.Bank
	acc  *energy.Accumulator

	momStore blockstore.Store // integrated loudness blocks
	stStore  blockstore.Store // loudness range blocks

	samplePeak *peak.SampleMeter
	truePeak   *peak.TruePeakMeter

	chans  [][]float64 // deinterleave scratch
	f32buf []float64
}

// New creates a Meter. Without options it measures integrated loudness
// of 48 kHz stereo input.
func New(opts ...Option) (*Meter, error) {
	cfg := config{
		sampleRate: 48000,
		channels:   2,
		modes:      ModeIntegrated,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.modes = cfg.modes.Normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	channelMap := cfg.channelMap
	if channelMap == nil {
		channelMap = defaultChannelMap(cfg.channels)
	}

	weights := cfg.weights
	if weights == nil {
		weights = make([]float64, cfg.channels)
		for i, ch := range channelMap {
			weights[i] = ch.Weight()
		}
	}

	m := &Meter{
		sampleRate: cfg.sampleRate,
		channels:   cfg.channels,
		modes:      cfg.modes,
		channelMap: channelMap,

		bank: kweight.NewBank(cfg.sampleRate, cfg.channels),
		acc: energy.New(energy.Config{
			SampleRate: cfg.sampleRate,
			Weights:    weights,
			ShortTerm:  cfg.modes.Has(ModeShortTerm),
		}),

		chans: make([][]float64, cfg.channels),
	}

	momBlocks, stBlocks := historyBlocks(cfg.maxHistory, cfg.modes)

	if cfg.modes.Has(ModeIntegrated) {
		m.momStore = newStore(cfg.modes, momBlocks)
	}

	if cfg.modes.Has(ModeLoudnessRange) {
		m.stStore = newStore(cfg.modes, stBlocks)
	}

	if cfg.modes.Has(ModeSamplePeak) {
		m.samplePeak = peak.NewSampleMeter(cfg.channels)
	}

	if cfg.modes.Has(ModeTruePeak) {
		m.truePeak = peak.NewTruePeakMeter(cfg.sampleRate, cfg.channels)
	}

	return m, nil
}

func newStore(modes Mode, maxBlocks int) blockstore.Store {
	if modes.Has(ModeHistogram) {
		return blockstore.NewHistogram()
	}

	return blockstore.NewList(maxBlocks)
}

// historyBlocks translates a history duration into block-store bounds,
// one block per emission hop. Zero means unbounded.
func historyBlocks(history time.Duration, modes Mode) (momBlocks, stBlocks int) {
	if history <= 0 {
		return 0, 0
	}

	min := momentaryWindow
	if modes.Has(ModeShortTerm) {
		min = shortTermWindow
	}

	if history < min {
		history = min
	}

	return int(history / momentaryHop), int(history / shortTermHop)
}

// SampleRate returns the configured input sample rate in Hz.
func (m *Meter) SampleRate() float64 {
	return m.sampleRate
}

// Channels returns the configured number of interleaved channels.
func (m *Meter) Channels() int {
	return m.channels
}

// Modes returns the normalized measurement modes.
func (m *Meter) Modes() Mode {
	return m.modes
}

// ChannelMap returns a copy of the channel layout in use.
func (m *Meter) ChannelMap() []Channel {
	return append([]Channel(nil), m.channelMap...)
}

// AddFrames ingests interleaved samples. The slice length must be a
// whole number of frames; otherwise ErrFrameAlignment is returned and
// the meter state is unchanged.
func (m *Meter) AddFrames(samples []float64) error {
	if len(samples)%m.channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrFrameAlignment, len(samples), m.channels)
	}

	frames := len(samples) / m.channels
	if frames == 0 {
		return nil
	}

	if m.samplePeak != nil {
		m.samplePeak.StartBatch()
	}

	if m.truePeak != nil {
		m.truePeak.StartBatch()
	}

	for ch := 0; ch < m.channels; ch++ {
		buf := core.EnsureLen(m.chans[ch], frames)
		m.chans[ch] = buf

		for i := range frames {
			buf[i] = samples[i*m.channels+ch]
		}

		// Peaks are measured on the raw signal, before K-weighting.
		if m.samplePeak != nil {
			m.samplePeak.ProcessChannel(ch, buf)
		}

		if m.truePeak != nil {
			m.truePeak.ProcessChannel(ch, buf)
		}

		m.bank.ProcessChannel(ch, buf)
	}

	momentary, shortTerm := m.acc.Push(m.chans, frames)

	if m.momStore != nil {
		for _, e := range momentary {
			m.momStore.Record(e)
		}
	}

	if m.stStore != nil {
		for _, e := range shortTerm {
			m.stStore.Record(e)
		}
	}

	return nil
}

// AddFramesFloat32 ingests interleaved 32-bit float samples.
func (m *Meter) AddFramesFloat32(samples []float32) error {
	if len(samples)%m.channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrFrameAlignment, len(samples), m.channels)
	}

	m.f32buf = core.FromFloat32(m.f32buf, samples)

	return m.AddFrames(m.f32buf)
}

// Momentary returns the loudness of the most recent 400 ms in LUFS.
// Returns ErrInsufficientData until a full window has been ingested.
// Digital silence yields negative infinity.
func (m *Meter) Momentary() (float64, error) {
	e, ok := m.acc.MomentaryEnergy()
	if !ok {
		return 0, ErrInsufficientData
	}

	return core.EnergyToLoudness(e), nil
}

// ShortTerm returns the loudness of the most recent 3 s in LUFS.
// Requires ModeShortTerm.
func (m *Meter) ShortTerm() (float64, error) {
	if !m.modes.Has(ModeShortTerm) {
		return 0, ErrModeNotEnabled
	}

	e, ok := m.acc.ShortTermEnergy()
	if !ok {
		return 0, ErrInsufficientData
	}

	return core.EnergyToLoudness(e), nil
}

// Window returns the loudness of the most recent window of the given
// length in LUFS. The window may not exceed what the meter retains:
// 3 s with ModeShortTerm, 400 ms otherwise. Requires ModeMomentary.
func (m *Meter) Window(window time.Duration) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: window %s not positive", ErrInvalidConfiguration, window)
	}

	samples := int(math.Round(window.Seconds() * m.sampleRate))
	if samples > m.acc.RingSamples() {
		return 0, ErrModeNotEnabled
	}

	e, ok := m.acc.WindowEnergy(samples)
	if !ok {
		return 0, ErrInsufficientData
	}

	return core.EnergyToLoudness(e), nil
}

// Integrated returns the gated integrated loudness of everything
// ingested so far in LUFS. Requires ModeIntegrated. Returns
// ErrInsufficientData when no gating block passed the absolute gate.
func (m *Meter) Integrated() (float64, error) {
	if !m.modes.Has(ModeIntegrated) {
		return 0, ErrModeNotEnabled
	}

	lufs, ok := gating.Integrated(m.momStore)
	if !ok {
		return 0, ErrInsufficientData
	}

	return lufs, nil
}

// RelativeThreshold returns the relative gate threshold in LUFS that the
// integrated measurement currently applies. Requires ModeIntegrated.
// When no block passed the absolute gate it returns the absolute gate,
// -70 LUFS.
func (m *Meter) RelativeThreshold() (float64, error) {
	if !m.modes.Has(ModeIntegrated) {
		return 0, ErrModeNotEnabled
	}

	return gating.RelativeThreshold(m.momStore), nil
}

// LoudnessRange returns the loudness range (LRA) of everything ingested
// so far in LU. Requires ModeLoudnessRange.
func (m *Meter) LoudnessRange() (float64, error) {
	if !m.modes.Has(ModeLoudnessRange) {
		return 0, ErrModeNotEnabled
	}

	lra, ok := gating.Range(m.stStore)
	if !ok {
		return 0, ErrInsufficientData
	}

	return lra, nil
}

// SamplePeak returns the maximum absolute sample value of the channel
// since the meter was created. Requires ModeSamplePeak.
func (m *Meter) SamplePeak(channel int) (float64, error) {
	if m.samplePeak == nil {
		return 0, ErrModeNotEnabled
	}

	if channel < 0 || channel >= m.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	return m.samplePeak.Peak(channel), nil
}

// PrevSamplePeak returns the maximum absolute sample value of the
// channel during the most recent AddFrames call. Requires
// ModeSamplePeak.
func (m *Meter) PrevSamplePeak(channel int) (float64, error) {
	if m.samplePeak == nil {
		return 0, ErrModeNotEnabled
	}

	if channel < 0 || channel >= m.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	return m.samplePeak.PrevPeak(channel), nil
}

// TruePeak returns the maximum inter-sample peak estimate of the channel
// since the meter was created, never less than the sample peak. Requires
// ModeTruePeak.
func (m *Meter) TruePeak(channel int) (float64, error) {
	if m.truePeak == nil {
		return 0, ErrModeNotEnabled
	}

	if channel < 0 || channel >= m.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	return math.Max(m.truePeak.Peak(channel), m.samplePeak.Peak(channel)), nil
}

// PrevTruePeak returns the maximum inter-sample peak estimate of the
// channel during the most recent AddFrames call. Requires ModeTruePeak.
func (m *Meter) PrevTruePeak(channel int) (float64, error) {
	if m.truePeak == nil {
		return 0, ErrModeNotEnabled
	}

	if channel < 0 || channel >= m.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	return math.Max(m.truePeak.PrevPeak(channel), m.samplePeak.PrevPeak(channel)), nil
}

// GlobalIntegrated returns the gated integrated loudness across several
// meters, as if their gating blocks belonged to one program. Every meter
// must have ModeIntegrated enabled.
func GlobalIntegrated(meters ...*Meter) (float64, error) {
	stores := make([]blockstore.Store, 0, len(meters))
	for _, m := range meters {
		if !m.modes.Has(ModeIntegrated) {
			return 0, ErrModeNotEnabled
		}

		stores = append(stores, m.momStore)
	}

	lufs, ok := gating.Integrated(stores...)
	if !ok {
		return 0, ErrInsufficientData
	}

	return lufs, nil
}

// GlobalRange returns the loudness range across several meters. Every
// meter must have ModeLoudnessRange enabled, and all meters must agree
// on ModeHistogram so their block stores can be combined.
func GlobalRange(meters ...*Meter) (float64, error) {
	if len(meters) == 0 {
		return 0, ErrInsufficientData
	}

	hist := meters[0].modes.Has(ModeHistogram)

	stores := make([]blockstore.Store, 0, len(meters))
	for _, m := range meters {
		if !m.modes.Has(ModeLoudnessRange) {
			return 0, ErrModeNotEnabled
		}

		if m.modes.Has(ModeHistogram) != hist {
			return 0, fmt.Errorf("%w: mixed histogram and exact block stores", ErrInvalidConfiguration)
		}

		stores = append(stores, m.stStore)
	}

	lra, ok := gating.Range(stores...)
	if !ok {
		return 0, ErrInsufficientData
	}

	return lra, nil
}
