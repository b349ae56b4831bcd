// Package effects provides non-I/O time-domain effect kernels for mono
// float sample buffers.
//
// Effects in this package:
//   - DelayEffect: single-tap feedback delay; echo, or reverb with a
//     one-pole lowpass in the feedback path.
//   - ChorusEffect: sinusoidally modulated fractional delay with light
//     feedback.
//
// Both derive their feedback gain from an RT60 decay-time model and
// support single-sample, in-place, and whole-buffer processing. State is
// scoped to one effect instance; nothing persists across instances.
package effects
