// Package dsp implements the signal-processing core of the tracking loop:
// replica resampling, carrier wipeoff, the five-tap correlator, the loop
// discriminators and filters, and the CN0/lock estimators.
package dsp

import (
	"fmt"
	"math"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

// Taps holds the five code replicas for one block. All five are views into a
// single generator pass, so they share identical Doppler-adjusted chipping.
type Taps struct {
	VE, E, P, L, VL []complex64
}

// Resampler produces Doppler-adjusted code replicas from a 2x-chip sampled
// spreading code. The long very-early buffer is allocated once; the other
// four taps are derived by integer-offset slicing.
type Resampler struct {
	fsHz    float64
	elChips float64
	veChips float64
	code    []complex64 // sampled code with guard band, len 2L+4
	ve      []complex64 // long VE buffer, reused every block
}

// NewResampler allocates a resampler for blocks of at most maxBlockLen
// samples. The spreading code is installed later via SetCode.
func NewResampler(fsHz, elChips, veChips float64, maxBlockLen int) (*Resampler, error) {
	if elChips <= 0 || veChips <= elChips {
		return nil, fmt.Errorf("correlator spacing: early-late %.3f and very-early-late %.3f chips (want 0 < el < ve)", elChips, veChips)
	}
	if maxBlockLen <= 0 {
		return nil, fmt.Errorf("max block length %d", maxBlockLen)
	}
	// Worst-case VE offset in samples at the lowest plausible code rate.
	margin := int(math.Ceil(veChips*fsHz/gnss.E1CodeChipRateHz)) + 4
	return &Resampler{
		fsHz:    fsHz,
		elChips: elChips,
		veChips: veChips,
		ve:      make([]complex64, maxBlockLen+2*margin),
	}, nil
}

// SetCode installs the sampled spreading code (with guard band) for the
// current tracking session.
func (r *Resampler) SetCode(code []complex64) error {
	if len(code) != gnss.SampledCodeLength {
		return fmt.Errorf("sampled code length %d, want %d", len(code), gnss.SampledCodeLength)
	}
	r.code = code
	return nil
}

// Update regenerates the five replicas for one block. codeFreqHz is the
// current chipping-rate estimate and remCodePhaseSamples the fractional
// sample residual carried into this block. The very-early buffer is filled in
// a single pass starting 2*veChips half-chips early; the guard band absorbs
// the +/-2 indices this produces at the code edges.
func (r *Resampler) Update(codeFreqHz, remCodePhaseSamples float64, blockLen int) Taps {
	const codeLenHalfChips = 2 * gnss.E1BCodeLengthChips

	stepChips := codeFreqHz / r.fsHz
	stepHalfChips := 2 * stepChips
	remHalfChips := remCodePhaseSamples * stepHalfChips

	elSamples := int(math.Round(r.elChips / stepChips))
	veSamples := int(math.Round(r.veChips / stepChips))

	n := blockLen + 2*veSamples
	veOffHalfChips := 2 * r.veChips
	tcode := -remHalfChips
	for i := 0; i < n; i++ {
		idx := 2 + int(math.Round(math.Mod(tcode-veOffHalfChips, codeLenHalfChips)))
		r.ve[i] = r.code[idx]
		tcode += stepHalfChips
	}

	return Taps{
		VE: r.ve[:blockLen],
		E:  r.ve[veSamples-elSamples : veSamples-elSamples+blockLen],
		P:  r.ve[veSamples : veSamples+blockLen],
		L:  r.ve[veSamples+elSamples : veSamples+elSamples+blockLen],
		VL: r.ve[2*veSamples : 2*veSamples+blockLen],
	}
}

// CarrierNCO generates the carrier wipeoff replica. The buffer is allocated
// once and reused; phase bookkeeping stays in float64.
type CarrierNCO struct {
	fsHz float64
	buf  []complex64
}

// NewCarrierNCO allocates an NCO for blocks of at most maxBlockLen samples.
func NewCarrierNCO(fsHz float64, maxBlockLen int) *CarrierNCO {
	return &CarrierNCO{fsHz: fsHz, buf: make([]complex64, maxBlockLen)}
}

// Mix fills the wipeoff buffer with exp(j(rem + i*dphi)) for the given
// Doppler and carried-over phase, and returns the buffer slice together with
// the residual phase after the block, wrapped into [0, 2pi).
func (c *CarrierNCO) Mix(dopplerHz, remPhaseRad float64, blockLen int) ([]complex64, float64) {
	step := 2 * math.Pi * dopplerHz / c.fsHz
	phase := remPhaseRad
	for i := 0; i < blockLen; i++ {
		s, cs := math.Sincos(phase)
		c.buf[i] = complex(float32(cs), float32(s))
		phase += step
	}
	rem := math.Mod(phase, 2*math.Pi)
	if rem < 0 {
		rem += 2 * math.Pi
	}
	return c.buf[:blockLen], rem
}
