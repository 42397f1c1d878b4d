// Package hilbert computes the discrete analytic signal of a finite real
// sequence and its magnitude envelope.
//
// The transform is the usual frequency-domain construction: the spectrum of
// the input is weighted with 1 at DC (and Nyquist for even lengths), 2 for the
// positive frequencies and 0 for the negative ones, then transformed back. The
// real part of the result reproduces the input and the imaginary part is its
// Hilbert transform.
//
// Any length is supported. Power-of-two lengths use a single FFT plan; other
// lengths are evaluated exactly with Bluestein's chirp-z algorithm on top of a
// power-of-two plan, so no zero-padding is applied to the signal itself.
//
// # Usage
//
//	env, err := hilbert.Envelope(samples)
//
// For repeated transforms of equal length, build a [Transformer] once and
// reuse it.
package hilbert
