package source

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
	"github.com/junjunhencool/gnss-sdr/internal/gnss/simcode"
)

func writeIQFile(t *testing.T, samples []complex64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.iq")
	buf := make([]byte, 8*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[8*i:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[8*i+4:], math.Float32bits(imag(s)))
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceRoundTrip(t *testing.T) {
	want := make([]complex64, 1000)
	for i := range want {
		want[i] = complex(float32(i), -float32(i)/2)
	}
	src, err := NewFileSource(writeIQFile(t, want))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	got := make([]complex64, len(want))
	read := 0
	for read < len(got) {
		end := read + 137
		if end > len(got) {
			end = len(got)
		}
		n, err := src.Read(context.Background(), got[read:end])
		read += n
		if err != nil {
			t.Fatalf("read at %d: %v", read, err)
		}
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := src.Read(context.Background(), got[:8]); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestFileSourceShortTail(t *testing.T) {
	want := make([]complex64, 10)
	for i := range want {
		want[i] = complex(float32(i), 0)
	}
	src, err := NewFileSource(writeIQFile(t, want))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	dst := make([]complex64, 64)
	n, err := src.Read(context.Background(), dst)
	if n != 10 {
		t.Fatalf("read %d samples, want 10", n)
	}
	if err != nil {
		t.Fatalf("short read error: %v", err)
	}
}

func TestLimitSource(t *testing.T) {
	gen := func(_ uint64, dst []complex64) {
		for i := range dst {
			dst[i] = 1
		}
	}
	src := NewLimit(NewSynth(gen), 100)
	dst := make([]complex64, 64)

	n1, err := src.Read(context.Background(), dst)
	if n1 != 64 || err != nil {
		t.Fatalf("first read: %d, %v", n1, err)
	}
	n2, err := src.Read(context.Background(), dst)
	if n2 != 36 || err != nil {
		t.Fatalf("second read: %d, %v", n2, err)
	}
	if _, err := src.Read(context.Background(), dst); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSynthE1Deterministic(t *testing.T) {
	chips, err := simcode.Generator()(gnss.SignalE1B, 11)
	if err != nil {
		t.Fatal(err)
	}
	code, err := gnss.SampledCode(chips)
	if err != nil {
		t.Fatal(err)
	}
	gen := NewE1(code, E1Params{FsHz: 4.092e6, DopplerHz: 100})

	a := make([]complex64, 4096)
	b := make([]complex64, 4096)
	gen(1000, a)
	gen(1000, b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between identical generations", i)
		}
	}
}

func TestSynthE1CodePeriodicity(t *testing.T) {
	chips, _ := simcode.Generator()(gnss.SignalE1B, 11)
	code, _ := gnss.SampledCode(chips)
	// At 4.092 MHz one code period spans exactly 16368 samples.
	gen := NewE1(code, E1Params{FsHz: 4.092e6})

	a := make([]complex64, 256)
	b := make([]complex64, 256)
	gen(0, a)
	gen(16368, b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d not periodic across one PRN", i)
		}
	}
}

func TestSynthContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewSynth(func(_ uint64, dst []complex64) {})
	if _, err := src.Read(ctx, make([]complex64, 4)); err == nil {
		t.Fatal("read succeeded on canceled context")
	}
}
