// Package decay estimates decay times from impulse-response envelopes.
//
// It is used to verify that feedback-driven effects honor their RT60
// decay-time parameter, and is generally useful for tuning decay settings
// against recorded responses.
package decay
