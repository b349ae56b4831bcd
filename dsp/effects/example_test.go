package effects_test

import (
	"fmt"

	"github.com/cwbudde/wavefx/dsp/effects"
)

func ExampleApplyDelay() {
	input := make([]float64, 8001)
	input[0] = 1 // impulse

	out, err := effects.ApplyDelay(input, 16000, 0.5, 250, 1.0, false)
	if err != nil {
		fmt.Println("error")
		return
	}

	// 250 ms at 16 kHz is 4000 samples.
	fmt.Printf("len=%d dry=%.2f echo=%.2f\n", len(out), out[0], out[4000])
	// Output:
	// len=8001 dry=0.50 echo=0.50
}

func ExampleNewChorusEffect() {
	chorus, err := effects.NewChorusEffect(16000,
		effects.WithChorusTimeMs(10),
		effects.WithChorusDepthMs(5),
		effects.WithChorusRateHz(1),
	)
	if err != nil {
		fmt.Println("error")
		return
	}

	buf := make([]float64, 1000)
	for i := range buf {
		buf[i] = 1
	}
	chorus.ProcessInPlace(buf)

	fmt.Printf("len=%d buffer=%d\n", len(buf), chorus.BufferLen())
	// Output:
	// len=1000 buffer=320
}
