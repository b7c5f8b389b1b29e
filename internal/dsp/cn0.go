package dsp

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

// CN0Estimator computes the signal-to-noise-variance carrier-to-noise density
// estimate over a window of prompt correlator outputs. Scratch buffers are
// allocated once so Estimate never allocates inside a work call.
type CN0Estimator struct {
	fsHz  float64
	absRe []float64
	mag2  []float64
}

// NewCN0Estimator builds an estimator for windows of n prompt samples.
func NewCN0Estimator(fsHz float64, n int) *CN0Estimator {
	return &CN0Estimator{
		fsHz:  fsHz,
		absRe: make([]float64, n),
		mag2:  make([]float64, n),
	}
}

// Estimate returns the SNV CN0 in dB-Hz. A window with no measurable noise
// variance reports +Inf.
func (c *CN0Estimator) Estimate(window []complex64) float64 {
	n := len(window)
	if n == 0 || n > len(c.absRe) {
		return 0
	}
	for i, p := range window {
		re := float64(real(p))
		im := float64(imag(p))
		c.absRe[i] = math.Abs(re)
		c.mag2[i] = re*re + im*im
	}
	psig := stat.Mean(c.absRe[:n], nil)
	psig *= psig
	ptot := stat.Mean(c.mag2[:n], nil)
	noise := ptot - psig
	if noise <= 0 {
		return math.Inf(1)
	}
	return 10*math.Log10(psig/noise) +
		10*math.Log10(c.fsHz/2) -
		10*math.Log10(gnss.E1BCodeLengthChips)
}

// CarrierLockRatio is the coherence statistic over a prompt window: the
// normalized difference of in-phase and quadrature energies of the summed
// window, +1 when fully phase-locked, near 0 on noise. Magnitude never
// exceeds 1.
func CarrierLockRatio(window []complex64) float64 {
	var sumI, sumQ float64
	for _, p := range window {
		sumI += float64(real(p))
		sumQ += float64(imag(p))
	}
	nbd := sumI*sumI - sumQ*sumQ
	nbp := sumI*sumI + sumQ*sumQ
	if nbp == 0 {
		return 0
	}
	return nbd / nbp
}
