package source

import (
	"context"
	"math"
	"math/rand"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

// GenFunc fills dst with the samples starting at absolute sample index start.
type GenFunc func(start uint64, dst []complex64)

// Synth is a deterministic synthetic sample source driven by a generator
// function. It never ends; wrap the driving context to bound a run.
type Synth struct {
	fn  GenFunc
	pos uint64
}

// NewSynth builds a synthetic source from a generator function.
func NewSynth(fn GenFunc) *Synth { return &Synth{fn: fn} }

func (s *Synth) Read(ctx context.Context, dst []complex64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.fn(s.pos, dst)
	s.pos += uint64(len(dst))
	return len(dst), nil
}

func (s *Synth) Close() error { return nil }

// E1Params describes a simulated Galileo E1 signal: the sampled spreading
// code (with guard band), a constant carrier offset, a code delay and
// optional complex white noise.
type E1Params struct {
	FsHz         float64
	DopplerHz    float64
	DelaySamples float64
	Amplitude    float64
	NoiseStd     float64
	Seed         int64
}

// NewE1 returns a generator producing code times carrier plus noise at the
// nominal chipping rate. Noise is drawn from a seeded generator so runs are
// repeatable.
func NewE1(code []complex64, p E1Params) GenFunc {
	if p.Amplitude == 0 {
		p.Amplitude = 1
	}
	rng := rand.New(rand.NewSource(p.Seed))
	const codeLenHalfChips = 2 * gnss.E1BCodeLengthChips
	stepHalfChips := 2 * gnss.E1CodeChipRateHz / p.FsHz
	phaseStep := 2 * math.Pi * p.DopplerHz / p.FsHz
	return func(start uint64, dst []complex64) {
		for i := range dst {
			n := float64(start) + float64(i)
			hc := math.Mod((n-p.DelaySamples)*stepHalfChips, codeLenHalfChips)
			if hc < 0 {
				hc += codeLenHalfChips
			}
			idx := 2 + int(math.Round(hc))
			chip := float64(real(code[idx]))
			sin, cos := math.Sincos(phaseStep * n)
			re := p.Amplitude*chip*cos + rng.NormFloat64()*p.NoiseStd
			im := p.Amplitude*chip*sin + rng.NormFloat64()*p.NoiseStd
			dst[i] = complex(float32(re), float32(im))
		}
	}
}

// NewNoise returns a generator producing complex white Gaussian noise.
func NewNoise(std float64, seed int64) GenFunc {
	rng := rand.New(rand.NewSource(seed))
	return func(_ uint64, dst []complex64) {
		for i := range dst {
			dst[i] = complex(float32(rng.NormFloat64()*std), float32(rng.NormFloat64()*std))
		}
	}
}
