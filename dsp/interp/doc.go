// Package interp provides fractional interpolation kernels used by
// modulated delay lines.
package interp
