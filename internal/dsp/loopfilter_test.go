package dsp

import (
	"math"
	"testing"
)

func TestLoopFilterRejectsBadParams(t *testing.T) {
	if _, err := NewPLLFilter(0, 0.004); err == nil {
		t.Fatal("accepted zero PLL bandwidth")
	}
	if _, err := NewPLLFilter(-5, 0.004); err == nil {
		t.Fatal("accepted negative PLL bandwidth")
	}
	if _, err := NewDLLFilter(2, 0); err == nil {
		t.Fatal("accepted zero integration time")
	}
}

func TestLoopFilterIntegratesConstantError(t *testing.T) {
	f, err := NewDLLFilter(2, 0.004)
	if err != nil {
		t.Fatal(err)
	}
	var prev float64
	for i := 0; i < 50; i++ {
		out := f.Update(0.1)
		if i > 0 && out <= prev {
			t.Fatalf("step %d: output %.6f did not grow from %.6f under constant error", i, out, prev)
		}
		prev = out
	}
}

func TestLoopFilterZeroErrorHoldsOutput(t *testing.T) {
	f, err := NewPLLFilter(50, 0.004)
	if err != nil {
		t.Fatal(err)
	}
	f.Update(0.2)
	f.Update(0)
	hold := f.Update(0)
	next := f.Update(0)
	if math.Abs(next-hold) > 1e-12 {
		t.Fatalf("output drifts with zero error: %.9f -> %.9f", hold, next)
	}
}

func TestLoopFilterInitializeResets(t *testing.T) {
	f, err := NewPLLFilter(50, 0.004)
	if err != nil {
		t.Fatal(err)
	}
	first := f.Update(0.05)
	for i := 0; i < 10; i++ {
		f.Update(0.3)
	}
	f.Initialize(1234)
	if again := f.Update(0.05); math.Abs(again-first) > 1e-12 {
		t.Fatalf("first output after reset %.9f, want %.9f", again, first)
	}
}
