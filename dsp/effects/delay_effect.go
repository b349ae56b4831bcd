package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/wavefx/dsp/core"
	"github.com/cwbudde/wavefx/dsp/delay"
)

const (
	defaultDelayWet        = 0.5
	defaultDelayTimeMs     = 250.0
	defaultDelayDecaySecs  = 1.0
	defaultDelayLowpass    = false
	delayLowpassCoeff      = 0.5
	delayFeedbackClampLow  = 0.0
	delayFeedbackClampHigh = 1.0
)

// DelayOption mutates delay-effect construction parameters.
type DelayOption func(*delayConfig) error

type delayConfig struct {
	wet        float64
	delayMs    float64
	decayTimeS float64
	lowpass    bool
}

func defaultDelayConfig() delayConfig {
	return delayConfig{
		wet:        defaultDelayWet,
		delayMs:    defaultDelayTimeMs,
		decayTimeS: defaultDelayDecaySecs,
		lowpass:    defaultDelayLowpass,
	}
}

// WithDelayWet sets the wet/dry mix. Values outside [0, 1] are accepted
// and pass through the mix arithmetic unchanged; only non-finite values
// are rejected.
func WithDelayWet(wet float64) DelayOption {
	return func(cfg *delayConfig) error {
		if math.IsNaN(wet) || math.IsInf(wet, 0) {
			return fmt.Errorf("delay wet must be finite: %f", wet)
		}

		cfg.wet = wet

		return nil
	}
}

// WithDelayTimeMs sets the base delay time in milliseconds.
func WithDelayTimeMs(delayMs float64) DelayOption {
	return func(cfg *delayConfig) error {
		if delayMs <= 0 || math.IsNaN(delayMs) || math.IsInf(delayMs, 0) {
			return fmt.Errorf("delay time must be > 0 and finite: %f ms", delayMs)
		}

		cfg.delayMs = delayMs

		return nil
	}
}

// WithDelayDecayTime sets the RT60 decay time in seconds.
func WithDelayDecayTime(decayTimeS float64) DelayOption {
	return func(cfg *delayConfig) error {
		if decayTimeS <= 0 || math.IsNaN(decayTimeS) || math.IsInf(decayTimeS, 0) {
			return fmt.Errorf("delay decay time must be > 0 and finite: %f s", decayTimeS)
		}

		cfg.decayTimeS = decayTimeS

		return nil
	}
}

// WithDelayLowpass enables the one-pole lowpass in the feedback path.
// With the filter engaged the effect darkens each repeat, which is the
// reverb voicing; without it the repeats are exact echoes.
func WithDelayLowpass(lowpass bool) DelayOption {
	return func(cfg *delayConfig) error {
		cfg.lowpass = lowpass

		return nil
	}
}

// DelayEffect is a single-tap feedback delay with dry/wet mix.
//
// Feedback gain follows an RT60 approximation: after decayTimeS seconds
// the repeating signal has dropped by 60 dB. With the lowpass engaged the
// feedback path is smoothed by a fixed one-pole filter, turning the echo
// into a crude reverb tail.
type DelayEffect struct {
	sampleRate float64
	wet        float64
	delayMs    float64
	decayTimeS float64
	lowpass    bool

	feedback     float64
	delaySamples int

	line   *delay.Line
	prevLP float64
}

// NewDelayEffect creates a delay effect with practical defaults and
// optional overrides.
func NewDelayEffect(sampleRate float64, opts ...DelayOption) (*DelayEffect, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultDelayConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	e := &DelayEffect{
		sampleRate: sampleRate,
		wet:        cfg.wet,
		delayMs:    cfg.delayMs,
		decayTimeS: cfg.decayTimeS,
		lowpass:    cfg.lowpass,
	}

	e.delaySamples = int(math.Round(e.delayMs * e.sampleRate / 1000))
	if e.delaySamples < 1 {
		e.delaySamples = 1
	}

	delaySeconds := e.delayMs / 1000
	e.feedback = core.Clamp(math.Pow(10, -3*delaySeconds/e.decayTimeS),
		delayFeedbackClampLow, delayFeedbackClampHigh)

	line, err := delay.New(e.delaySamples)
	if err != nil {
		return nil, err
	}

	e.line = line

	return e, nil
}

// Reset clears delay and filter state.
func (e *DelayEffect) Reset() {
	e.line.Reset()
	e.prevLP = 0
}

// ProcessSample processes one sample.
func (e *DelayEffect) ProcessSample(input float64) float64 {
	// Read before write: the tap addresses the sample written one full
	// delay period ago, i.e. the slot the write below will overwrite.
	delayed := e.line.Read(e.delaySamples)

	out := (1-e.wet)*input + e.wet*delayed

	feedbackSignal := delayed
	if e.lowpass {
		feedbackSignal = delayLowpassCoeff*delayed + (1-delayLowpassCoeff)*e.prevLP
		e.prevLP = core.FlushDenormals(feedbackSignal)
	}

	e.line.Write(input + e.feedback*feedbackSignal)

	return out
}

// ProcessInPlace applies the effect to buf in place.
func (e *DelayEffect) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}

// Process returns a freshly allocated output of the same length as input.
// The input is not modified. Output values are unclamped; quantization is
// the caller's concern.
func (e *DelayEffect) Process(input []float64) []float64 {
	out := make([]float64, len(input))
	for i, v := range input {
		out[i] = e.ProcessSample(v)
	}

	return out
}

// SampleRate returns sample rate in Hz.
func (e *DelayEffect) SampleRate() float64 { return e.sampleRate }

// Wet returns the wet/dry mix.
func (e *DelayEffect) Wet() float64 { return e.wet }

// TimeMs returns the base delay time in milliseconds.
func (e *DelayEffect) TimeMs() float64 { return e.delayMs }

// DecayTime returns the RT60 decay time in seconds.
func (e *DelayEffect) DecayTime() float64 { return e.decayTimeS }

// Lowpass reports whether the feedback lowpass is engaged.
func (e *DelayEffect) Lowpass() bool { return e.lowpass }

// Feedback returns the derived feedback gain in [0, 1].
func (e *DelayEffect) Feedback() float64 { return e.feedback }

// DelaySamples returns the delay-line length in samples.
func (e *DelayEffect) DelaySamples() int { return e.delaySamples }

// ApplyDelay applies an echo (lowpass=false) or reverb (lowpass=true) to
// input and returns a new slice of the same length.
//
// Parameters are validated the same way as NewDelayEffect; degenerate
// combinations (non-positive decay time or sample rate) are rejected here
// rather than producing non-finite output.
func ApplyDelay(input []float64, sampleRate, wet, delayMs, decayTimeS float64, lowpass bool) ([]float64, error) {
	e, err := NewDelayEffect(sampleRate,
		WithDelayWet(wet),
		WithDelayTimeMs(delayMs),
		WithDelayDecayTime(decayTimeS),
		WithDelayLowpass(lowpass),
	)
	if err != nil {
		return nil, err
	}

	return e.Process(input), nil
}
