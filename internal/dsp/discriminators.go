package dsp

import (
	"math"
	"math/cmplx"
)

// PLLTwoQuadrantAtan is the Costas-free carrier phase discriminator. It maps
// the prompt correlator output to a phase error in cycles, range +/-0.5.
func PLLTwoQuadrantAtan(prompt complex64) float64 {
	if real(prompt) == 0 && imag(prompt) == 0 {
		return 0
	}
	return math.Atan2(float64(imag(prompt)), float64(real(prompt))) / (2 * math.Pi)
}

// DLLNCVEMLNormalized is the normalized noncoherent very-early-minus-late
// code discriminator over the four outer taps. Positive output means the
// incoming code lags the replica and the chipping rate must slow down.
func DLLNCVEMLNormalized(ve, e, l, vl complex64) float64 {
	eMag := cmplx.Abs(complex128(ve)) + cmplx.Abs(complex128(e))
	lMag := cmplx.Abs(complex128(l)) + cmplx.Abs(complex128(vl))
	sum := eMag + lMag
	if sum == 0 {
		return 0
	}
	return (eMag - lMag) / sum
}
