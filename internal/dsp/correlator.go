package dsp

// WipeoffAndVEPL multiplies the input block by the conjugate carrier replica
// and accumulates the five code correlations in one pass over memory. This is
// the hot kernel: the loop body is kept branch-free and the accumulators live
// in registers so the compiler can vectorise it.
//
// Code replicas are real-valued (+/-1 half-chips), so only their real part
// enters the products. Products are computed in single precision,
// accumulation in double.
func WipeoffAndVEPL(in, carr []complex64, taps Taps) (ve, e, p, l, vl complex64) {
	n := len(in)
	if len(carr) < n {
		n = len(carr)
	}
	if len(taps.P) < n {
		n = len(taps.P)
	}

	var veR, veI, eR, eI, pR, pI, lR, lI, vlR, vlI float64
	for i := 0; i < n; i++ {
		s := in[i]
		c := carr[i]
		// baseband = in * conj(carr)
		bbR := real(s)*real(c) + imag(s)*imag(c)
		bbI := imag(s)*real(c) - real(s)*imag(c)

		cv := real(taps.VE[i])
		veR += float64(bbR * cv)
		veI += float64(bbI * cv)
		cv = real(taps.E[i])
		eR += float64(bbR * cv)
		eI += float64(bbI * cv)
		cv = real(taps.P[i])
		pR += float64(bbR * cv)
		pI += float64(bbI * cv)
		cv = real(taps.L[i])
		lR += float64(bbR * cv)
		lI += float64(bbI * cv)
		cv = real(taps.VL[i])
		vlR += float64(bbR * cv)
		vlI += float64(bbI * cv)
	}

	ve = complex(float32(veR), float32(veI))
	e = complex(float32(eR), float32(eI))
	p = complex(float32(pR), float32(pI))
	l = complex(float32(lR), float32(lI))
	vl = complex(float32(vlR), float32(vlI))
	return
}
