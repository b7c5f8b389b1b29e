package dsp

import "fmt"

// LoopFilter is a second-order discrete loop filter parameterised by its
// noise bandwidth and integration time. The same structure serves both the
// carrier and the code loop; they differ only in damping gain.
type LoopFilter struct {
	tau1, tau2 float64
	interval   float64
	prevErr    float64
	prevOut    float64
}

func newLoopFilter(bwHz, zeta, gain, integrationSecs float64) (*LoopFilter, error) {
	if bwHz <= 0 {
		return nil, fmt.Errorf("loop bandwidth %.3f Hz (want > 0)", bwHz)
	}
	if integrationSecs <= 0 {
		return nil, fmt.Errorf("integration time %.6f s (want > 0)", integrationSecs)
	}
	wn := bwHz * 8 * zeta / (4*zeta*zeta + 1)
	return &LoopFilter{
		tau1:     gain / (wn * wn),
		tau2:     2 * zeta / wn,
		interval: integrationSecs,
	}, nil
}

// NewPLLFilter builds the carrier loop filter (damping 0.7, gain 1.0).
func NewPLLFilter(bwHz, integrationSecs float64) (*LoopFilter, error) {
	return newLoopFilter(bwHz, 0.7, 1.0, integrationSecs)
}

// NewDLLFilter builds the code loop filter (damping 0.7, gain 1.0).
func NewDLLFilter(bwHz, integrationSecs float64) (*LoopFilter, error) {
	return newLoopFilter(bwHz, 0.7, 1.0, integrationSecs)
}

// Initialize clears the filter memory at the start of a tracking session.
// The reference value is the acquisition seed the engine applies as the
// loop's base quantity; the correction integrator itself restarts at zero.
func (f *LoopFilter) Initialize(ref float64) {
	_ = ref
	f.prevErr = 0
	f.prevOut = 0
}

// Update advances the filter by one integration interval and returns the new
// NCO correction.
func (f *LoopFilter) Update(err float64) float64 {
	out := f.prevOut + (f.tau2/f.tau1)*(err-f.prevErr) + (err+f.prevErr)*(f.interval/(2*f.tau1))
	f.prevErr = err
	f.prevOut = out
	return out
}
