package loudness_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-loudness/internal/testutil"
	"github.com/cwbudde/algo-loudness/loudness"
)

const sineLUFS = -3.0102999566398 // full-scale 1 kHz sine, K-weighted

func newMeter(t *testing.T, opts ...loudness.Option) *loudness.Meter {
	t.Helper()

	m, err := loudness.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return m
}

func feedSine(t *testing.T, m *loudness.Meter, freq, amplitude float64, seconds float64) {
	t.Helper()

	length := int(seconds * m.SampleRate())

	sig := testutil.DeterministicSine(freq, m.SampleRate(), amplitude, length)
	if m.Channels() == 2 {
		sig = testutil.Interleave(sig, sig)
	}

	if err := m.AddFrames(sig); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name string
		opts []loudness.Option
	}{
		{"zero channels", []loudness.Option{loudness.WithChannels(0)}},
		{"too many channels", []loudness.Option{loudness.WithChannels(65)}},
		{"rate too low", []loudness.Option{loudness.WithSampleRate(8)}},
		{"rate too high", []loudness.Option{loudness.WithSampleRate(5e6)}},
		{"no modes", []loudness.Option{loudness.WithModes(0)}},
		{"map length mismatch", []loudness.Option{
			loudness.WithChannels(2),
			loudness.WithChannelMap([]loudness.Channel{loudness.ChannelLeft}),
		}},
		{"weights length mismatch", []loudness.Option{
			loudness.WithChannels(2),
			loudness.WithChannelWeights([]float64{1}),
		}},
		{"negative weight", []loudness.Option{
			loudness.WithChannels(1),
			loudness.WithChannelWeights([]float64{-1}),
		}},
		{"negative history", []loudness.Option{loudness.WithMaxHistory(-time.Second)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loudness.New(tc.opts...); !errors.Is(err, loudness.ErrInvalidConfiguration) {
				t.Errorf("New error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestModeNormalization(t *testing.T) {
	m := newMeter(t, loudness.WithModes(loudness.ModeTruePeak))

	if !m.Modes().Has(loudness.ModeSamplePeak) {
		t.Error("ModeTruePeak did not imply ModeSamplePeak")
	}

	if !m.Modes().Has(loudness.ModeMomentary) {
		t.Error("ModeTruePeak did not imply ModeMomentary")
	}

	m = newMeter(t, loudness.WithModes(loudness.ModeLoudnessRange))
	if !m.Modes().Has(loudness.ModeShortTerm) {
		t.Error("ModeLoudnessRange did not imply ModeShortTerm")
	}
}

func TestFrameAlignment(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(2))

	if err := m.AddFrames(make([]float64, 3)); !errors.Is(err, loudness.ErrFrameAlignment) {
		t.Errorf("AddFrames error = %v, want ErrFrameAlignment", err)
	}

	// The misaligned buffer must not have advanced the stream.
	if _, err := m.Momentary(); !errors.Is(err, loudness.ErrInsufficientData) {
		t.Errorf("Momentary error = %v, want ErrInsufficientData", err)
	}
}

func TestMomentaryBeforeFullWindow(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1))

	// 300 ms is short of the 400 ms window.
	feedSine(t, m, 1000, 0.5, 0.3)

	if _, err := m.Momentary(); !errors.Is(err, loudness.ErrInsufficientData) {
		t.Errorf("Momentary error = %v, want ErrInsufficientData", err)
	}
}

func TestSilenceIsNegativeInfinity(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeSamplePeak))

	if err := m.AddFrames(make([]float64, 48000)); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	got, err := m.Momentary()
	if err != nil {
		t.Fatalf("Momentary: %v", err)
	}

	if !math.IsInf(got, -1) {
		t.Errorf("Momentary = %v, want -Inf for silence", got)
	}

	// No block passes the absolute gate.
	if _, err := m.Integrated(); !errors.Is(err, loudness.ErrInsufficientData) {
		t.Errorf("Integrated error = %v, want ErrInsufficientData", err)
	}

	if p, err := m.SamplePeak(0); err != nil || p != 0 {
		t.Errorf("SamplePeak = %v, %v, want 0, nil", p, err)
	}
}

func TestSineLoudness(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeShortTerm))

	feedSine(t, m, 1000, 1.0, 10)

	for name, query := range map[string]func() (float64, error){
		"Momentary":  m.Momentary,
		"ShortTerm":  m.ShortTerm,
		"Integrated": m.Integrated,
	} {
		got, err := query()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		if math.Abs(got-sineLUFS) > 0.1 {
			t.Errorf("%s = %v, want %v", name, got, sineLUFS)
		}
	}
}

func TestStereoMatchesExpectedOffset(t *testing.T) {
	// The same sine on both stereo channels doubles the energy: +3.01 LU
	// over the mono reading.
	mono := newMeter(t, loudness.WithChannels(1))
	stereo := newMeter(t, loudness.WithChannels(2))

	feedSine(t, mono, 1000, 0.5, 5)
	feedSine(t, stereo, 1000, 0.5, 5)

	mi, err := mono.Integrated()
	if err != nil {
		t.Fatalf("mono Integrated: %v", err)
	}

	si, err := stereo.Integrated()
	if err != nil {
		t.Fatalf("stereo Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, si-mi, 10*math.Log10(2), 0.05)
}

func TestDualMonoCountsTwice(t *testing.T) {
	plain := newMeter(t, loudness.WithChannels(1))
	dual := newMeter(t, loudness.WithChannels(1),
		loudness.WithChannelMap([]loudness.Channel{loudness.ChannelDualMono}))

	feedSine(t, plain, 1000, 0.5, 5)
	feedSine(t, dual, 1000, 0.5, 5)

	pi, err := plain.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	di, err := dual.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, di-pi, 10*math.Log10(2), 0.05)
}

func TestUnusedChannelExcluded(t *testing.T) {
	// Channel 1 carries a loud sine but is mapped unused; only the quiet
	// channel 0 may contribute.
	m := newMeter(t, loudness.WithChannels(2),
		loudness.WithChannelMap([]loudness.Channel{loudness.ChannelLeft, loudness.ChannelUnused}),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeSamplePeak))

	quiet := testutil.DeterministicSine(1000, 48000, 0.1, 5*48000)
	loud := testutil.DeterministicSine(1000, 48000, 1.0, 5*48000)

	if err := m.AddFrames(testutil.Interleave(quiet, loud)); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	got, err := m.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	if math.Abs(got-(sineLUFS-20)) > 0.1 {
		t.Errorf("Integrated = %v, want %v from the quiet channel alone", got, sineLUFS-20)
	}

	// Peak metering still covers the unused channel.
	if p, err := m.SamplePeak(1); err != nil || math.Abs(p-1.0) > 1e-6 {
		t.Errorf("SamplePeak(1) = %v, %v, want 1.0, nil", p, err)
	}
}

func TestSurroundChannelsWeighted(t *testing.T) {
	// The same signal on a surround channel reads 10*log10(1.41) louder
	// than on a front channel.
	front := newMeter(t, loudness.WithChannels(1),
		loudness.WithChannelMap([]loudness.Channel{loudness.ChannelLeft}))
	surround := newMeter(t, loudness.WithChannels(1),
		loudness.WithChannelMap([]loudness.Channel{loudness.ChannelLeftSurround}))

	feedSine(t, front, 1000, 0.5, 5)
	feedSine(t, surround, 1000, 0.5, 5)

	fi, err := front.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	si, err := surround.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, si-fi, 10*math.Log10(1.41), 0.05)
}

func TestRelativeGateDiscardsQuietPassage(t *testing.T) {
	// A loud passage followed by one below the absolute gate: the quiet
	// tail must not drag the integrated loudness down.
	m := newMeter(t, loudness.WithChannels(1))

	feedSine(t, m, 1000, 1.0, 10)

	loudOnly, err := m.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	feedSine(t, m, 1000, 0.0001, 10)

	got, err := m.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, got, loudOnly, 0.1)
}

func TestHistogramMatchesExactStores(t *testing.T) {
	exact := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeLoudnessRange))
	hist := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeLoudnessRange|loudness.ModeHistogram))

	for _, m := range []*loudness.Meter{exact, hist} {
		feedSine(t, m, 1000, 0.8, 10)
		feedSine(t, m, 1000, 0.08, 10)
	}

	ei, err := exact.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	hi, err := hist.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, hi, ei, 0.1)

	er, err := exact.LoudnessRange()
	if err != nil {
		t.Fatalf("LoudnessRange: %v", err)
	}

	hr, err := hist.LoudnessRange()
	if err != nil {
		t.Fatalf("LoudnessRange: %v", err)
	}

	testutil.RequireNearlyEqual(t, hr, er, 0.15)
}

func TestLoudnessRangeConstantSignal(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeLoudnessRange))

	feedSine(t, m, 1000, 0.5, 20)

	got, err := m.LoudnessRange()
	if err != nil {
		t.Fatalf("LoudnessRange: %v", err)
	}

	if got > 0.01 {
		t.Errorf("LoudnessRange = %v, want ~0 for a constant-level signal", got)
	}
}

func TestBatchSizeInvariance(t *testing.T) {
	whole := newMeter(t, loudness.WithChannels(1))
	ragged := newMeter(t, loudness.WithChannels(1))

	sig := testutil.DeterministicNoise(11, 0.5, 5*48000)

	if err := whole.AddFrames(sig); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	for off := 0; off < len(sig); {
		n := 1237
		if off+n > len(sig) {
			n = len(sig) - off
		}

		if err := ragged.AddFrames(sig[off : off+n]); err != nil {
			t.Fatalf("AddFrames: %v", err)
		}

		off += n
	}

	wi, err := whole.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	ri, err := ragged.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, ri, wi, 1e-9)
}

func TestFloat32MatchesFloat64(t *testing.T) {
	m64 := newMeter(t, loudness.WithChannels(1))
	m32 := newMeter(t, loudness.WithChannels(1))

	sig := testutil.DeterministicSine(1000, 48000, 0.5, 5*48000)

	sig32 := make([]float32, len(sig))
	for i, v := range sig {
		sig32[i] = float32(v)
	}

	if err := m64.AddFrames(sig); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	if err := m32.AddFramesFloat32(sig32); err != nil {
		t.Fatalf("AddFramesFloat32: %v", err)
	}

	i64, err := m64.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	i32, err := m32.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, i32, i64, 1e-4)
}

func TestWindowMatchesMomentary(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1))

	feedSine(t, m, 1000, 0.5, 2)

	mom, err := m.Momentary()
	if err != nil {
		t.Fatalf("Momentary: %v", err)
	}

	win, err := m.Window(400 * time.Millisecond)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}

	testutil.RequireNearlyEqual(t, win, mom, 1e-9)
}

func TestWindowLimits(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1)) // no short-term: 400 ms retained

	feedSine(t, m, 1000, 0.5, 2)

	if _, err := m.Window(3 * time.Second); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("oversized Window error = %v, want ErrModeNotEnabled", err)
	}

	if _, err := m.Window(-time.Second); !errors.Is(err, loudness.ErrInvalidConfiguration) {
		t.Errorf("negative Window error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestModeNotEnabled(t *testing.T) {
	m := newMeter(t, loudness.WithModes(loudness.ModeIntegrated))

	if _, err := m.ShortTerm(); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("ShortTerm error = %v, want ErrModeNotEnabled", err)
	}

	if _, err := m.LoudnessRange(); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("LoudnessRange error = %v, want ErrModeNotEnabled", err)
	}

	if _, err := m.SamplePeak(0); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("SamplePeak error = %v, want ErrModeNotEnabled", err)
	}

	if _, err := m.TruePeak(0); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("TruePeak error = %v, want ErrModeNotEnabled", err)
	}
}

func TestInvalidChannel(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(2),
		loudness.WithModes(loudness.ModeTruePeak))

	for _, ch := range []int{-1, 2} {
		if _, err := m.SamplePeak(ch); !errors.Is(err, loudness.ErrInvalidChannel) {
			t.Errorf("SamplePeak(%d) error = %v, want ErrInvalidChannel", ch, err)
		}

		if _, err := m.TruePeak(ch); !errors.Is(err, loudness.ErrInvalidChannel) {
			t.Errorf("TruePeak(%d) error = %v, want ErrInvalidChannel", ch, err)
		}
	}
}

func TestTruePeakAtLeastSamplePeak(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeTruePeak))

	// Phase-offset quarter-rate sine whose crest falls between samples.
	sig := make([]float64, 48000)
	for i := range sig {
		sig[i] = math.Sin(2*math.Pi*float64(i)/4 + math.Pi/4)
	}

	if err := m.AddFrames(sig); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	sp, err := m.SamplePeak(0)
	if err != nil {
		t.Fatalf("SamplePeak: %v", err)
	}

	tp, err := m.TruePeak(0)
	if err != nil {
		t.Fatalf("TruePeak: %v", err)
	}

	if tp < sp {
		t.Errorf("TruePeak %v below SamplePeak %v", tp, sp)
	}

	if tp < 0.9 {
		t.Errorf("TruePeak = %v, want > 0.9 for inter-sample crest of 1.0", tp)
	}
}

func TestPrevPeakTracksLatestBatch(t *testing.T) {
	m := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeSamplePeak))

	feedSine(t, m, 1000, 0.8, 1)
	feedSine(t, m, 1000, 0.2, 1)

	prev, err := m.PrevSamplePeak(0)
	if err != nil {
		t.Fatalf("PrevSamplePeak: %v", err)
	}

	life, err := m.SamplePeak(0)
	if err != nil {
		t.Fatalf("SamplePeak: %v", err)
	}

	testutil.RequireNearlyEqual(t, prev, 0.2, 1e-3)
	testutil.RequireNearlyEqual(t, life, 0.8, 1e-3)
}

func TestMaxHistoryForgetsOldBlocks(t *testing.T) {
	bounded := newMeter(t, loudness.WithChannels(1),
		loudness.WithMaxHistory(10*time.Second))

	// Loud opening, then a long -20 dB tail exceeding the history.
	feedSine(t, bounded, 1000, 1.0, 10)
	feedSine(t, bounded, 1000, 0.1, 30)

	got, err := bounded.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	if math.Abs(got-(sineLUFS-20)) > 0.1 {
		t.Errorf("Integrated = %v, want %v once the loud opening is forgotten", got, sineLUFS-20)
	}
}

func TestGlobalIntegrated(t *testing.T) {
	a := newMeter(t, loudness.WithChannels(1))
	b := newMeter(t, loudness.WithChannels(1))

	feedSine(t, a, 1000, 0.5, 5)
	feedSine(t, b, 1000, 0.5, 5)

	single, err := a.Integrated()
	if err != nil {
		t.Fatalf("Integrated: %v", err)
	}

	combined, err := loudness.GlobalIntegrated(a, b)
	if err != nil {
		t.Fatalf("GlobalIntegrated: %v", err)
	}

	testutil.RequireNearlyEqual(t, combined, single, 1e-9)

	noInt := newMeter(t, loudness.WithModes(loudness.ModeSamplePeak))
	if _, err := loudness.GlobalIntegrated(a, noInt); !errors.Is(err, loudness.ErrModeNotEnabled) {
		t.Errorf("GlobalIntegrated error = %v, want ErrModeNotEnabled", err)
	}
}

func TestGlobalRange(t *testing.T) {
	a := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeLoudnessRange))
	b := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeLoudnessRange))

	feedSine(t, a, 1000, 0.8, 20)
	feedSine(t, b, 1000, 0.08, 20)

	got, err := loudness.GlobalRange(a, b)
	if err != nil {
		t.Fatalf("GlobalRange: %v", err)
	}

	// Two equally long passages 20 LU apart span close to 20 LU.
	if got < 15 || got > 21 {
		t.Errorf("GlobalRange = %v, want close to 20", got)
	}

	hist := newMeter(t, loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeLoudnessRange|loudness.ModeHistogram))
	feedSine(t, hist, 1000, 0.8, 20)

	if _, err := loudness.GlobalRange(a, hist); !errors.Is(err, loudness.ErrInvalidConfiguration) {
		t.Errorf("mixed-store GlobalRange error = %v, want ErrInvalidConfiguration", err)
	}
}
