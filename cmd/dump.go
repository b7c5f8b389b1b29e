package cmd

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

var flagSpectrum bool

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Inspect a tracking dump file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		recs, err := tracking.ReadDump(f)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no records")
			return nil
		}

		var cn0Min, cn0Max, cn0Sum float64
		cn0Min = math.Inf(1)
		cn0Max = math.Inf(-1)
		for _, r := range recs {
			v := float64(r.CN0DbHz)
			cn0Sum += v
			if v < cn0Min {
				cn0Min = v
			}
			if v > cn0Max {
				cn0Max = v
			}
		}
		last := recs[len(recs)-1]
		fmt.Printf("records:        %d\n", len(recs))
		fmt.Printf("samples:        %d .. %.0f\n", recs[0].SampleCounter, last.PRNStartSampleEnd)
		fmt.Printf("cn0 dB-Hz:      min %.1f  mean %.1f  max %.1f\n",
			cn0Min, cn0Sum/float64(len(recs)), cn0Max)
		fmt.Printf("final doppler:  %.2f Hz\n", last.CarrierDopplerHz)
		fmt.Printf("final code frq: %.2f Hz\n", last.CodeFreqHz)

		if flagSpectrum {
			printPromptSpectrum(recs)
		}
		return nil
	},
}

// printPromptSpectrum reports the dominant line in the prompt correlator
// series, which exposes any residual carrier offset at the PRN-period rate.
func printPromptSpectrum(recs []tracking.DumpRecord) {
	series := make([]complex128, len(recs))
	for i, r := range recs {
		series[i] = complex(float64(r.PromptQ), float64(r.PromptI))
	}
	fft := fourier.NewCmplxFFT(len(series))
	coeffs := fft.Coefficients(nil, series)

	peakBin := 0
	peakMag := 0.0
	for i, c := range coeffs {
		if m := cmplx.Abs(c); m > peakMag {
			peakMag = m
			peakBin = i
		}
	}
	recordRate := 1 / gnss.E1PRNPeriodSecs
	freq := fft.Freq(peakBin) * recordRate
	fmt.Printf("prompt peak:    %.2f Hz (bin %d of %d)\n", freq, peakBin, len(coeffs))
}

func init() {
	dumpCmd.Flags().BoolVar(&flagSpectrum, "spectrum", false, "print the dominant prompt-series frequency")
	rootCmd.AddCommand(dumpCmd)
}
