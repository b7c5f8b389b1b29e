// Package simcode provides deterministic stand-in spreading codes for
// simulation and testing. The sequences are balanced pseudo-random chip
// streams seeded per (signal, PRN); they are not the ICD memory codes and
// must not be used against live satellite signals.
package simcode

import (
	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

// Generator returns a gnss.CodeGenerator producing repeatable chip sequences.
func Generator() gnss.CodeGenerator {
	return func(signal gnss.Signal, prn int) ([]int8, error) {
		if _, err := gnss.ParseSignal(string(signal)); err != nil {
			return nil, err
		}
		seed := uint64(prn)
		for _, ch := range string(signal) {
			seed = seed*131 + uint64(ch)
		}
		chips := make([]int8, gnss.E1BCodeLengthChips)
		x := splitmix(&seed)
		bit := 0
		for i := range chips {
			if bit == 0 {
				x = splitmix(&seed)
				bit = 64
			}
			if x&1 == 1 {
				chips[i] = 1
			} else {
				chips[i] = -1
			}
			x >>= 1
			bit--
		}
		return chips, nil
	}
}

// splitmix advances a SplitMix64 state and returns the next value.
func splitmix(state *uint64) uint64 {
	*state += 0x9e3779b97f4a7c15
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
