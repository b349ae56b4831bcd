package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/wavefx/dsp/signal"
)

func TestNewChorusEffectValidation(t *testing.T) {
	if _, err := NewChorusEffect(0); err == nil {
		t.Fatal("expected error for sample rate 0")
	}

	if _, err := NewChorusEffect(16000, WithChorusTimeMs(0)); err == nil {
		t.Fatal("expected error for delay time 0")
	}

	if _, err := NewChorusEffect(16000, WithChorusDecayTime(0)); err == nil {
		t.Fatal("expected error for decay time 0")
	}

	if _, err := NewChorusEffect(16000, WithChorusRateHz(-1)); err == nil {
		t.Fatal("expected error for negative rate")
	}

	if _, err := NewChorusEffect(16000, WithChorusDepthMs(math.Inf(1))); err == nil {
		t.Fatal("expected error for infinite depth")
	}
}

func TestChorusBufferSizedForFullSweep(t *testing.T) {
	e, err := NewChorusEffect(16000,
		WithChorusTimeMs(10),
		WithChorusDepthMs(5),
	)
	if err != nil {
		t.Fatal(err)
	}

	// base 160 samples + 2 * 80 samples of modulation headroom.
	if got := e.BufferLen(); got != 320 {
		t.Fatalf("buffer length: got %d want 320", got)
	}
}

func TestChorusLengthPreservation(t *testing.T) {
	for _, n := range []int{0, 1, 333, 4096} {
		input := make([]float64, n)

		out, err := ApplyChorus(input, 16000, 0.5, 10, 1.0, 0.8, 5)
		if err != nil {
			t.Fatal(err)
		}

		if len(out) != n {
			t.Fatalf("length %d: got %d", n, len(out))
		}
	}
}

func TestChorusDryMixIdentity(t *testing.T) {
	g, err := signal.NewGenerator(16000)
	if err != nil {
		t.Fatal(err)
	}

	input, err := g.WhiteNoise(0.8, 2000)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ApplyChorus(input, 16000, 0, 10, 1.0, 1.0, 5)
	if err != nil {
		t.Fatal(err)
	}

	for i := range out {
		if out[i] != input[i] {
			t.Fatalf("sample %d: got %v want %v", i, out[i], input[i])
		}
	}
}

func TestChorusSilenceInvariance(t *testing.T) {
	input := make([]float64, 3000)

	params := []struct {
		wet, delayMs, decayTimeS, rateHz, depthMs float64
	}{
		{0.5, 10, 1.0, 1.0, 5},
		{1.0, 250, 0.1, 0.1, 20},
		{0.3, 1, 5.0, 10, 1},
	}

	for _, p := range params {
		out, err := ApplyChorus(input, 16000, p.wet, p.delayMs, p.decayTimeS, p.rateHz, p.depthMs)
		if err != nil {
			t.Fatal(err)
		}

		for i, v := range out {
			if v != 0 {
				t.Fatalf("params %+v sample %d: got %v want 0", p, i, v)
			}
		}
	}
}

func TestChorusFeedbackGainRange(t *testing.T) {
	cases := []struct {
		delayMs, decayTimeS float64
	}{
		{1, 0.001},
		{10, 1},
		{250, 0.1},
		{1000, 100},
	}

	for _, tc := range cases {
		e, err := NewChorusEffect(16000,
			WithChorusTimeMs(tc.delayMs),
			WithChorusDecayTime(tc.decayTimeS),
		)
		if err != nil {
			t.Fatal(err)
		}

		fb := e.Feedback()
		if fb < 0 || fb > 0.3 || math.IsNaN(fb) {
			t.Fatalf("delayMs=%v decay=%v: feedback %v outside [0, 0.3]",
				tc.delayMs, tc.decayTimeS, fb)
		}
	}
}

func TestChorusModulatesConstantSignal(t *testing.T) {
	g, err := signal.NewGenerator(16000)
	if err != nil {
		t.Fatal(err)
	}

	input, err := g.Constant(1.0, 1000)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ApplyChorus(input, 16000, 0.5, 10, 1.0, 1.0, 5.0)
	if err != nil {
		t.Fatal(err)
	}

	mean := 0.0
	for _, v := range out {
		mean += v
	}
	mean /= float64(len(out))

	variance := 0.0
	for _, v := range out {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(out))

	if variance <= 0.001 {
		t.Fatalf("modulation left constant signal flat: variance=%v", variance)
	}
}

func TestChorusInterpolationContinuity(t *testing.T) {
	// A fully wet chorus over a smooth sine must stay smooth: the
	// fractional read blends adjacent delay-line samples, so adjacent
	// output samples can differ by at most the input slope scaled by the
	// modulation-driven read-rate change. A truncating read would produce
	// staircase steps about twice that size.
	const (
		sampleRate = 16000.0
		freqHz     = 100.0
	)

	g, err := signal.NewGenerator(sampleRate)
	if err != nil {
		t.Fatal(err)
	}

	input, err := g.Sine(freqHz, 1.0, 8000)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ApplyChorus(input, sampleRate, 1.0, 10, 0.01, 0.5, 5)
	if err != nil {
		t.Fatal(err)
	}

	maxSlope := 2 * math.Pi * freqHz / sampleRate // ~0.039 per sample

	for i := 1; i < len(out); i++ {
		diff := math.Abs(out[i] - out[i-1])
		if diff > 1.5*maxSlope {
			t.Fatalf("discontinuity at %d: step %v exceeds %v", i, diff, 1.5*maxSlope)
		}
	}
}

func TestChorusSilentUntilFirstTapArrives(t *testing.T) {
	// Early frames read behind the start of the buffer; the Euclidean
	// wrap must land on silent slots, never on a negative index.
	g, err := signal.NewGenerator(16000)
	if err != nil {
		t.Fatal(err)
	}

	input, err := g.Sine(200, 1.0, 400)
	if err != nil {
		t.Fatal(err)
	}

	out, err := ApplyChorus(input, 16000, 1.0, 10, 1.0, 1.0, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Base delay is 160 samples and the modulated tap only moves further
	// back, so the first 160 fully wet samples are silence.
	for i := 0; i < 160; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d before first tap: got %v want 0", i, out[i])
		}
	}

	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is not finite: %v", i, v)
		}
	}
}

func TestChorusProcessInPlaceMatchesSample(t *testing.T) {
	e1, err := NewChorusEffect(16000, WithChorusTimeMs(5), WithChorusDepthMs(2))
	if err != nil {
		t.Fatal(err)
	}

	e2, err := NewChorusEffect(16000, WithChorusTimeMs(5), WithChorusDepthMs(2))
	if err != nil {
		t.Fatal(err)
	}

	input := make([]float64, 256)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * float64(i) / 31)
	}

	want := make([]float64, len(input))
	copy(want, input)

	for i := range want {
		want[i] = e1.ProcessSample(want[i])
	}

	got := make([]float64, len(input))
	copy(got, input)
	e2.ProcessInPlace(got)

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > 1e-12 {
			t.Fatalf("sample %d mismatch: got=%g want=%g diff=%g", i, got[i], want[i], diff)
		}
	}
}

func TestChorusResetRestoresState(t *testing.T) {
	e, err := NewChorusEffect(16000, WithChorusTimeMs(5), WithChorusDepthMs(2))
	if err != nil {
		t.Fatal(err)
	}

	in := make([]float64, 128)
	in[0] = 1

	out1 := e.Process(in)

	e.Reset()

	out2 := e.Process(in)

	for i := range out1 {
		if diff := math.Abs(out1[i] - out2[i]); diff > 1e-12 {
			t.Fatalf("sample %d mismatch after reset: got=%g want=%g", i, out2[i], out1[i])
		}
	}
}

func BenchmarkChorusEffectProcess(b *testing.B) {
	e, _ := NewChorusEffect(16000)

	buf := make([]float64, 16000)
	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * float64(i) / 127)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		e.ProcessInPlace(buf)
	}
}
