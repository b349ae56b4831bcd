package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/wavefx/dsp/interp"
)

// Line is a circular delay line.
//
// The buffer holds the most recent Len() samples. Read(d) returns the
// sample written d calls before the next Write; fractional delays are
// resolved with the configured interpolation mode (linear by default).
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional-read interpolation mode.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		d.mode = mode
	}
}

// New returns a delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	d := &Line{
		buffer: make([]float64, size),
		mode:   interp.Linear,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample and advances the write cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples relative to the write cursor.
// A delay equal to Len() addresses the oldest sample, the one the next
// Write will overwrite. The index wraps Euclidean-style, so any delay
// maps to a valid slot.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)

	readPos := (d.writePos - delay) % size
	if readPos < 0 {
		readPos += size
	}

	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay in samples.
//
// The read position is write cursor minus delay, kept as a real number and
// wrapped into [0, Len()); the fractional part selects the blend between
// the two adjacent buffer slots. Exact integer delays read directly.
func (d *Line) ReadFractional(delay float64) float64 {
	if delay < 0 {
		delay = 0
	}

	maxDelay := d.maxFractionalDelay()
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if t == 0 {
		return d.Read(p)
	}

	if d.mode == interp.Hermite {
		xm1 := d.Read(max(0, p-1))
		x0 := d.Read(p)
		x1 := d.Read(p + 1)
		x2 := d.Read(p + 2)

		return interp.Hermite4(t, xm1, x0, x1, x2)
	}

	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}

func (d *Line) maxFractionalDelay() float64 {
	if d.mode == interp.Hermite {
		return float64(len(d.buffer) - 2)
	}

	return float64(len(d.buffer))
}
