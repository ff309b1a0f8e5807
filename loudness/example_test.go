package loudness_test

import (
	"fmt"
	"log"
	"math"

	"github.com/cwbudde/algo-loudness/loudness"
)

func Example() {
	meter, err := loudness.New(
		loudness.WithSampleRate(48000),
		loudness.WithChannels(1),
		loudness.WithModes(loudness.ModeIntegrated|loudness.ModeSamplePeak),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Five seconds of a full-scale 1 kHz sine.
	sig := make([]float64, 5*48000)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 48000)
	}

	if err := meter.AddFrames(sig); err != nil {
		log.Fatal(err)
	}

	peak, err := meter.SamplePeak(0)
	if err != nil {
		log.Fatal(err)
	}

	integrated, err := meter.Integrated()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("sample peak: %.2f\n", peak)
	fmt.Printf("integrated: %.1f LUFS\n", integrated)

	// Output:
	// sample peak: 1.00
	// integrated: -3.0 LUFS
}
