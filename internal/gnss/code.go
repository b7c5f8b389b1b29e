package gnss

import "fmt"

// CodeGenerator produces the raw spreading-code chips (+1/-1) for a
// satellite. Implementations are pure functions of (signal, prn); the engine
// treats them as external collaborators.
type CodeGenerator func(signal Signal, prn int) ([]int8, error)

// SampledCodeLength is the length of a 2x-chip sampled replica including the
// two-sample guard band on each end.
const SampledCodeLength = 2*E1BCodeLengthChips + 4

// SampledCode expands a chip sequence into the sinBOC(1,1) replica sampled at
// two samples per chip. The cyclic code occupies indices [2, 2L+2); indices
// 0,1 repeat the last two half-chips and indices 2L+2, 2L+3 repeat the first
// two, so the resampler may index two samples past either end without a
// modulus test.
func SampledCode(chips []int8) ([]complex64, error) {
	if len(chips) != E1BCodeLengthChips {
		return nil, fmt.Errorf("spreading code has %d chips, want %d", len(chips), E1BCodeLengthChips)
	}
	code := make([]complex64, SampledCodeLength)
	for i, c := range chips {
		v := complex(float32(c), 0)
		code[2+2*i] = v
		code[2+2*i+1] = -v
	}
	n := 2 * E1BCodeLengthChips
	code[0] = code[n]
	code[1] = code[n+1]
	code[n+2] = code[2]
	code[n+3] = code[3]
	return code, nil
}
