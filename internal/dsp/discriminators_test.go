package dsp

import (
	"math"
	"testing"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

func TestPLLTwoQuadrantAtan(t *testing.T) {
	tests := []struct {
		name   string
		prompt complex64
		want   float64
	}{
		{"in_phase", 100 + 0i, 0},
		{"quadrature", 0 + 100i, 0.25},
		{"neg_quadrature", 0 - 100i, -0.25},
		{"45_deg", 100 + 100i, 0.125},
		{"zero", 0, 0},
		{"opposite", -100 + 0i, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PLLTwoQuadrantAtan(tt.prompt)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got %.9f cycles, want %.9f", got, tt.want)
			}
		})
	}
}

func TestDLLNCVEMLNormalized(t *testing.T) {
	tests := []struct {
		name           string
		ve, e, l, vl   complex64
		sign           int
		wantNormalized bool
	}{
		{"balanced", 50, 80, 80, 50, 0, true},
		{"early_heavy", 90, 100, 60, 40, 1, true},
		{"late_heavy", 40, 60, 100, 90, -1, true},
		{"all_zero", 0, 0, 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DLLNCVEMLNormalized(tt.ve, tt.e, tt.l, tt.vl)
			switch {
			case tt.sign > 0 && got <= 0:
				t.Fatalf("got %.4f, want > 0", got)
			case tt.sign < 0 && got >= 0:
				t.Fatalf("got %.4f, want < 0", got)
			case tt.sign == 0 && math.Abs(got) > 1e-9:
				t.Fatalf("got %.4f, want 0", got)
			}
			if tt.wantNormalized && math.Abs(got) > 1 {
				t.Fatalf("got %.4f outside [-1, 1]", got)
			}
		})
	}
}

// The code discriminator must have the polarity that slows the chipping rate
// when the incoming code lags the replica, through the full replica and
// correlator chain.
func TestDLLSCurvePolarity(t *testing.T) {
	const fs = 40.92e6
	const blockLen = 163680
	code := sampledCode(t)

	r, err := NewResampler(fs, 0.1, 0.15, blockLen)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetCode(code); err != nil {
		t.Fatal(err)
	}
	nco := NewCarrierNCO(fs, blockLen)
	carr, _ := nco.Mix(0, 0, blockLen)

	errAt := func(delaySamples float64) float64 {
		taps := r.Update(gnss.E1CodeChipRateHz, 0, blockLen)
		in := sampleE1(code, fs, delaySamples, 0, blockLen)
		ve, e, _, l, vl := WipeoffAndVEPL(in, carr, taps)
		return DLLNCVEMLNormalized(ve, e, l, vl)
	}

	if e := errAt(0); math.Abs(e) > 0.02 {
		t.Fatalf("discriminator at zero delay = %.4f", e)
	}
	if e := errAt(2); e < 0.05 {
		t.Fatalf("discriminator for lagging code = %.4f, want clearly positive", e)
	}
	if e := errAt(-2); e > -0.05 {
		t.Fatalf("discriminator for leading code = %.4f, want clearly negative", e)
	}
}
