// Package wavio decodes and encodes the mono 16-bit PCM WAV files the
// batch processor works on. Samples are exchanged with the DSP layer as
// normalized float64 buffers.
package wavio

import (
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/wavefx/dsp/core"
)

// Validation errors for input files that do not match the required format.
var (
	ErrNotWAV       = errors.New("not a valid WAV file")
	ErrChannelCount = errors.New("unsupported channel count")
	ErrBitDepth     = errors.New("unsupported bit depth")
	ErrSampleRate   = errors.New("unsupported sample rate")
)

const (
	requiredBitDepth = 16
	requiredChannels = 1

	// 16-bit PCM scaling: decode divides by 32768, encode multiplies by
	// 32767 and clamps to the int16 range.
	decodeScale = 32768.0
	encodeScale = 32767.0
)

// DecodeMono16 reads a WAV file and returns its samples normalized to
// [-1, 1). The file must be mono 16-bit PCM at requireRate Hz; anything
// else is a validation error.
func DecodeMono16(path string, requireRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()

	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}

	if int(dec.NumChans) != requiredChannels {
		return nil, fmt.Errorf("%s: %w: got %d, want mono", path, ErrChannelCount, dec.NumChans)
	}

	if int(dec.BitDepth) != requiredBitDepth {
		return nil, fmt.Errorf("%s: %w: got %d, want 16", path, ErrBitDepth, dec.BitDepth)
	}

	if int(dec.SampleRate) != requireRate {
		return nil, fmt.Errorf("%s: %w: got %d Hz, want %d Hz",
			path, ErrSampleRate, dec.SampleRate, requireRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / decodeScale
	}

	return samples, nil
}

// EncodeMono16 quantizes samples to 16-bit PCM and writes them as a mono
// WAV file at rate Hz. Out-of-range samples are clamped to full scale.
func EncodeMono16(path string, samples []float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, rate, requiredBitDepth, requiredChannels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(core.Clamp(s*encodeScale, -32768, 32767))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: requiredChannels,
			SampleRate:  rate,
		},
		Data:           data,
		SourceBitDepth: requiredBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	return f.Close()
}

// Peak returns the maximum absolute sample value, used to report whether
// quantization had to clamp.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	return vecmath.MaxAbs(samples)
}
