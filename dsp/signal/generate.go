package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"
)

// Generator creates deterministic test and measurement signals at a fixed
// sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for the given sample rate.
func NewGenerator(sampleRate float64, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("generator sample rate must be > 0 and finite: %f", sampleRate)
	}

	g := &Generator{
		sampleRate: sampleRate,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g, nil
}

// SampleRate returns the generator sample rate in Hz.
func (g *Generator) SampleRate() float64 {
	return g.sampleRate
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// Impulse generates a buffer of zeros with a single unit sample at index.
func (g *Generator) Impulse(index, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("impulse samples must be > 0: %d", samples)
	}

	if index < 0 || index >= samples {
		return nil, fmt.Errorf("impulse index out of range: %d (length %d)", index, samples)
	}

	out := make([]float64, samples)
	out[index] = 1

	return out, nil
}

// Constant generates a buffer filled with a single value.
func (g *Generator) Constant(value float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("constant samples must be > 0: %d", samples)
	}

	out := make([]float64, samples)
	for i := range out {
		out[i] = value
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := vecmath.MaxAbs(data)

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)

	return out, nil
}
