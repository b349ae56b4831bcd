package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/wavefx/dsp/core"
	"github.com/cwbudde/wavefx/dsp/delay"
)

const (
	defaultChorusWet       = 0.5
	defaultChorusTimeMs    = 250.0
	defaultChorusDecaySecs = 1.0
	defaultChorusRateHz    = 0.8
	defaultChorusDepthMs   = 20.0

	// Feedback stays well below unity so the modulated tap never builds
	// into an audible resonance.
	chorusFeedbackClampHigh = 0.3
)

// ChorusOption mutates chorus construction parameters.
type ChorusOption func(*chorusConfig) error

type chorusConfig struct {
	wet        float64
	delayMs    float64
	decayTimeS float64
	rateHz     float64
	depthMs    float64
}

func defaultChorusConfig() chorusConfig {
	return chorusConfig{
		wet:        defaultChorusWet,
		delayMs:    defaultChorusTimeMs,
		decayTimeS: defaultChorusDecaySecs,
		rateHz:     defaultChorusRateHz,
		depthMs:    defaultChorusDepthMs,
	}
}

// WithChorusWet sets the wet/dry mix. Values outside [0, 1] are accepted;
// only non-finite values are rejected.
func WithChorusWet(wet float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if math.IsNaN(wet) || math.IsInf(wet, 0) {
			return fmt.Errorf("chorus wet must be finite: %f", wet)
		}

		cfg.wet = wet

		return nil
	}
}

// WithChorusTimeMs sets the base delay time in milliseconds.
func WithChorusTimeMs(delayMs float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if delayMs <= 0 || math.IsNaN(delayMs) || math.IsInf(delayMs, 0) {
			return fmt.Errorf("chorus delay time must be > 0 and finite: %f ms", delayMs)
		}

		cfg.delayMs = delayMs

		return nil
	}
}

// WithChorusDecayTime sets the RT60 decay time in seconds.
func WithChorusDecayTime(decayTimeS float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if decayTimeS <= 0 || math.IsNaN(decayTimeS) || math.IsInf(decayTimeS, 0) {
			return fmt.Errorf("chorus decay time must be > 0 and finite: %f s", decayTimeS)
		}

		cfg.decayTimeS = decayTimeS

		return nil
	}
}

// WithChorusRateHz sets the LFO modulation rate in Hz.
func WithChorusRateHz(rateHz float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if rateHz < 0 || math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
			return fmt.Errorf("chorus rate must be >= 0 and finite: %f Hz", rateHz)
		}

		cfg.rateHz = rateHz

		return nil
	}
}

// WithChorusDepthMs sets the modulation depth in milliseconds.
func WithChorusDepthMs(depthMs float64) ChorusOption {
	return func(cfg *chorusConfig) error {
		if depthMs < 0 || math.IsNaN(depthMs) || math.IsInf(depthMs, 0) {
			return fmt.Errorf("chorus depth must be >= 0 and finite: %f ms", depthMs)
		}

		cfg.depthMs = depthMs

		return nil
	}
}

// ChorusEffect is a single-voice modulated-delay chorus with light
// feedback.
//
// The delay tap sweeps sinusoidally between the base delay and base plus
// depth:
//
//	d(t) = base + depth * (sin(phase) + 1) / 2
//
// and the fractional tap position is resolved with linear interpolation.
type ChorusEffect struct {
	sampleRate float64
	wet        float64
	delayMs    float64
	decayTimeS float64
	rateHz     float64
	depthMs    float64

	feedback         float64
	baseDelaySamples float64
	depthSamples     float64
	phaseInc         float64

	line     *delay.Line
	lfoPhase float64
}

// NewChorusEffect creates a chorus with practical defaults and optional
// overrides.
func NewChorusEffect(sampleRate float64, opts ...ChorusOption) (*ChorusEffect, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("chorus sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultChorusConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	e := &ChorusEffect{
		sampleRate: sampleRate,
		wet:        cfg.wet,
		delayMs:    cfg.delayMs,
		decayTimeS: cfg.decayTimeS,
		rateHz:     cfg.rateHz,
		depthMs:    cfg.depthMs,
	}

	e.baseDelaySamples = e.delayMs * e.sampleRate / 1000
	if e.baseDelaySamples < 1 {
		e.baseDelaySamples = 1
	}

	e.depthSamples = e.depthMs * e.sampleRate / 1000
	if e.depthSamples < 1 {
		e.depthSamples = 1
	}

	delaySeconds := e.delayMs / 1000
	e.feedback = core.Clamp(math.Pow(10, -3*delaySeconds/e.decayTimeS),
		0, chorusFeedbackClampHigh)

	e.phaseInc = 2 * math.Pi * e.rateHz / e.sampleRate

	// Room for the full sweep of the modulated tap: base plus depth, with
	// another depth of headroom before the read pointer meets the write
	// pointer within one period.
	bufferLen := int(e.baseDelaySamples + 2*e.depthSamples)

	line, err := delay.New(bufferLen)
	if err != nil {
		return nil, err
	}

	e.line = line

	return e, nil
}

// Reset clears delay state and modulation phase.
func (e *ChorusEffect) Reset() {
	e.line.Reset()
	e.lfoPhase = 0
}

// ProcessSample processes one sample.
func (e *ChorusEffect) ProcessSample(input float64) float64 {
	modulation := (math.Sin(e.lfoPhase) + 1) / 2 // 0..1
	currDelay := e.baseDelaySamples + modulation*e.depthSamples

	delayed := e.line.ReadFractional(currDelay)

	out := (1-e.wet)*input + e.wet*delayed

	e.line.Write(input + e.feedback*delayed)

	e.lfoPhase += e.phaseInc
	if e.lfoPhase >= 2*math.Pi {
		e.lfoPhase -= 2 * math.Pi
	}

	return out
}

// ProcessInPlace applies the effect to buf in place.
func (e *ChorusEffect) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}

// Process returns a freshly allocated output of the same length as input.
// The input is not modified. Output values are unclamped.
func (e *ChorusEffect) Process(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, v := range input {
		out[i] = e.ProcessSample(v)
	}

	return out
}

// SampleRate returns sample rate in Hz.
func (e *ChorusEffect) SampleRate() float64 { return e.sampleRate }

// Wet returns the wet/dry mix.
func (e *ChorusEffect) Wet() float64 { return e.wet }

// TimeMs returns the base delay time in milliseconds.
func (e *ChorusEffect) TimeMs() float64 { return e.delayMs }

// DecayTime returns the RT60 decay time in seconds.
func (e *ChorusEffect) DecayTime() float64 { return e.decayTimeS }

// RateHz returns the LFO rate in Hz.
func (e *ChorusEffect) RateHz() float64 { return e.rateHz }

// DepthMs returns the modulation depth in milliseconds.
func (e *ChorusEffect) DepthMs() float64 { return e.depthMs }

// Feedback returns the derived feedback gain in [0, 0.3].
func (e *ChorusEffect) Feedback() float64 { return e.feedback }

// BufferLen returns the delay-line length in samples.
func (e *ChorusEffect) BufferLen() int { return e.line.Len() }

// ApplyChorus applies a chorus to input and returns a new slice of the
// same length. Parameters are validated as in NewChorusEffect.
func ApplyChorus(input []float64, sampleRate, wet, delayMs, decayTimeS, rateHz, depthMs float64) ([]float64, error) {
	e, err := NewChorusEffect(sampleRate,
		WithChorusWet(wet),
		WithChorusTimeMs(delayMs),
		WithChorusDecayTime(decayTimeS),
		WithChorusRateHz(rateHz),
		WithChorusDepthMs(depthMs),
	)
	if err != nil {
		return nil, err
	}

	return e.Process(input), nil
}
