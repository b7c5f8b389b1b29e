package dsp

import (
	"math"
	"math/rand"
	"testing"
)

func TestCN0SNVCleanSignal(t *testing.T) {
	est := NewCN0Estimator(4.092e6, 10)
	window := make([]complex64, 10)
	for i := range window {
		// Strong prompt with a sliver of noise.
		window[i] = complex(16368+float32(i%3), 2)
	}
	cn0 := est.Estimate(window)
	if cn0 < 60 {
		t.Fatalf("clean window CN0 = %.1f dB-Hz, want > 60", cn0)
	}
}

func TestCN0SNVNoiseWindow(t *testing.T) {
	est := NewCN0Estimator(4.092e6, 10)
	rng := rand.New(rand.NewSource(7))
	low := 0
	const trials = 50
	for trial := 0; trial < trials; trial++ {
		window := make([]complex64, 10)
		for i := range window {
			window[i] = complex(float32(rng.NormFloat64()), float32(rng.NormFloat64()))
		}
		if est.Estimate(window) < 25 {
			low++
		}
	}
	// Noise-only windows must fall below the valid-CN0 floor most of the time.
	if low < trials/2 {
		t.Fatalf("only %d of %d noise windows below 25 dB-Hz", low, trials)
	}
}

func TestCN0SNVNoNoiseVariance(t *testing.T) {
	est := NewCN0Estimator(4.092e6, 10)
	window := make([]complex64, 10)
	for i := range window {
		window[i] = 1000
	}
	if cn0 := est.Estimate(window); !math.IsInf(cn0, 1) {
		t.Fatalf("constant window CN0 = %.1f, want +Inf", cn0)
	}
}

func TestCarrierLockRatio(t *testing.T) {
	tests := []struct {
		name   string
		window []complex64
		check  func(float64) bool
	}{
		{
			name:   "in_phase",
			window: []complex64{100, 101, 99, 100},
			check:  func(v float64) bool { return v > 0.99 },
		},
		{
			name:   "quadrature",
			window: []complex64{100i, 99i, 101i, 100i},
			check:  func(v float64) bool { return v < -0.99 },
		},
		{
			name:   "empty",
			window: nil,
			check:  func(v float64) bool { return v == 0 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CarrierLockRatio(tt.window)
			if math.Abs(got) > 1 {
				t.Fatalf("ratio %.4f outside [-1, 1]", got)
			}
			if !tt.check(got) {
				t.Fatalf("ratio %.4f fails check", got)
			}
		})
	}
}
