package hilbert

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Plans below this size are routed through Bluestein so that the FFT backend
// only ever sees sizes >= minPlanSize.
const minPlanSize = 4

// Transformer computes analytic signals and envelopes for a fixed length.
// It owns scratch memory and is not safe for concurrent use.
type Transformer struct {
	n int

	// direct is set for power-of-two lengths >= minPlanSize.
	direct *algofft.Plan[complex128]

	// Bluestein state for all other lengths.
	m      int
	plan   *algofft.Plan[complex128]
	chirp  []complex128 // w[k] = exp(-i*pi*k^2/n), len n
	kernel []complex128 // FFT of the conjugate chirp, len m
	work   []complex128 // len m

	spec    []complex128
	weights []float64
	re      []float64
	im      []float64
}

// NewTransformer prepares a transformer for sequences of length n.
func NewTransformer(n int) (*Transformer, error) {
	if n < 0 {
		return nil, fmt.Errorf("hilbert: length must be >= 0: %d", n)
	}

	t := &Transformer{
		n:       n,
		spec:    make([]complex128, n),
		weights: analyticWeights(n),
		re:      make([]float64, n),
		im:      make([]float64, n),
	}

	if n <= 1 {
		return t, nil
	}

	if n >= minPlanSize && isPowerOf2(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("hilbert: failed to create FFT plan: %w", err)
		}

		t.direct = plan

		return t, nil
	}

	err := t.initBluestein()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Len returns the sequence length the transformer was built for.
func (t *Transformer) Len() int {
	return t.n
}

func (t *Transformer) initBluestein() error {
	n := t.n

	m := nextPowerOf2(2*n - 1)
	if m < minPlanSize {
		m = minPlanSize
	}

	plan, err := algofft.NewPlan64(m)
	if err != nil {
		return fmt.Errorf("hilbert: failed to create FFT plan: %w", err)
	}

	t.m = m
	t.plan = plan
	t.chirp = make([]complex128, n)
	t.kernel = make([]complex128, m)
	t.work = make([]complex128, m)

	// k^2 mod 2n keeps the chirp angle small for long sequences.
	mod := int64(2 * n)
	for k := range n {
		kk := (int64(k) * int64(k)) % mod
		angle := -math.Pi * float64(kk) / float64(n)
		t.chirp[k] = cmplx.Rect(1, angle)
	}

	t.kernel[0] = cmplx.Conj(t.chirp[0])
	for k := 1; k < n; k++ {
		c := cmplx.Conj(t.chirp[k])
		t.kernel[k] = c
		t.kernel[m-k] = c
	}

	err = plan.Forward(t.kernel, t.kernel)
	if err != nil {
		return fmt.Errorf("hilbert: failed to compute chirp FFT: %w", err)
	}

	return nil
}

// forward computes the unnormalised DFT of src into dst (both len n).
func (t *Transformer) forward(dst, src []complex128) error {
	switch {
	case t.n == 1:
		dst[0] = src[0]
		return nil
	case t.direct != nil:
		return t.direct.Forward(dst, src)
	default:
		return t.bluestein(dst, src)
	}
}

// inverse computes the normalised inverse DFT of src into dst.
func (t *Transformer) inverse(dst, src []complex128) error {
	switch {
	case t.n == 1:
		dst[0] = src[0]
		return nil
	case t.direct != nil:
		return t.direct.Inverse(dst, src)
	}

	// IDFT(x) = conj(DFT(conj(x))) / n
	for i, v := range src {
		dst[i] = cmplx.Conj(v)
	}

	err := t.bluestein(dst, dst)
	if err != nil {
		return err
	}

	scale := 1 / float64(t.n)
	for i, v := range dst {
		dst[i] = complex(real(v)*scale, -imag(v)*scale)
	}

	return nil
}

// bluestein evaluates the length-n DFT as a chirp-weighted circular
// convolution of length m. dst and src may alias.
func (t *Transformer) bluestein(dst, src []complex128) error {
	work := t.work
	for k := range t.n {
		work[k] = src[k] * t.chirp[k]
	}

	for k := t.n; k < t.m; k++ {
		work[k] = 0
	}

	err := t.plan.Forward(work, work)
	if err != nil {
		return fmt.Errorf("hilbert: forward FFT failed: %w", err)
	}

	for i := range work {
		work[i] *= t.kernel[i]
	}

	err = t.plan.Inverse(work, work)
	if err != nil {
		return fmt.Errorf("hilbert: inverse FFT failed: %w", err)
	}

	for k := range t.n {
		dst[k] = work[k] * t.chirp[k]
	}

	return nil
}

// AnalyticTo writes the analytic signal of x into dst. Both must have
// length [Transformer.Len].
func (t *Transformer) AnalyticTo(dst []complex128, x []float64) error {
	if len(x) != t.n || len(dst) != t.n {
		return fmt.Errorf("hilbert: length mismatch: transformer=%d in=%d out=%d", t.n, len(x), len(dst))
	}

	if t.n == 0 {
		return nil
	}

	for i, v := range x {
		t.spec[i] = complex(v, 0)
	}

	err := t.forward(t.spec, t.spec)
	if err != nil {
		return err
	}

	for i, v := range t.spec {
		t.re[i] = real(v)
		t.im[i] = imag(v)
	}

	vecmath.MulBlockInPlace(t.re, t.weights)
	vecmath.MulBlockInPlace(t.im, t.weights)

	for i := range t.spec {
		t.spec[i] = complex(t.re[i], t.im[i])
	}

	return t.inverse(dst, t.spec)
}

// Analytic returns the analytic signal of x.
func (t *Transformer) Analytic(x []float64) ([]complex128, error) {
	out := make([]complex128, len(x))

	err := t.AnalyticTo(out, x)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// EnvelopeTo writes |analytic(x)| into dst.
func (t *Transformer) EnvelopeTo(dst, x []float64) error {
	if len(dst) != len(x) {
		return fmt.Errorf("hilbert: EnvelopeTo slice length mismatch: in=%d env=%d", len(x), len(dst))
	}

	// AnalyticTo uses spec as its own scratch, so the result lands there.
	err := t.AnalyticTo(t.spec, x)
	if err != nil {
		return err
	}

	for i, v := range t.spec {
		t.re[i] = real(v)
		t.im[i] = imag(v)
	}

	vecmath.Magnitude(dst, t.re, t.im)

	return nil
}

// Envelope returns |analytic(x)|.
func (t *Transformer) Envelope(x []float64) ([]float64, error) {
	out := make([]float64, len(x))

	err := t.EnvelopeTo(out, x)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Analytic is a one-shot helper around [Transformer.Analytic].
func Analytic(x []float64) ([]complex128, error) {
	t, err := NewTransformer(len(x))
	if err != nil {
		return nil, err
	}

	return t.Analytic(x)
}

// Envelope is a one-shot helper around [Transformer.Envelope].
func Envelope(x []float64) ([]float64, error) {
	t, err := NewTransformer(len(x))
	if err != nil {
		return nil, err
	}

	return t.Envelope(x)
}

// analyticWeights returns the spectral mask that zeroes negative frequencies.
func analyticWeights(n int) []float64 {
	h := make([]float64, n)
	if n == 0 {
		return h
	}

	h[0] = 1
	if n%2 == 0 {
		h[n/2] = 1
		for i := 1; i < n/2; i++ {
			h[i] = 2
		}
	} else {
		for i := 1; i <= (n-1)/2; i++ {
			h[i] = 2
		}
	}

	return h
}

func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
