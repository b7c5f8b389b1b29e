package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/junjunhencool/gnss-sdr/internal/config"
	"github.com/junjunhencool/gnss-sdr/internal/gnss"
	"github.com/junjunhencool/gnss-sdr/internal/gnss/simcode"
	"github.com/junjunhencool/gnss-sdr/internal/logging"
	"github.com/junjunhencool/gnss-sdr/internal/receiver"
	"github.com/junjunhencool/gnss-sdr/internal/source"
	"github.com/junjunhencool/gnss-sdr/internal/telemetry"
	"github.com/junjunhencool/gnss-sdr/internal/tracking"
)

var (
	flagInput      string
	flagSim        bool
	flagSimDoppler float64
	flagSimDelay   float64
	flagSimNoise   float64
	flagSeconds    float64
	flagWebAddr    string
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run tracking channels over an IQ file or a simulated signal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if flagConfig != "" {
			var err error
			cfg, err = config.Load(flagConfig)
			if err != nil {
				return err
			}
		}
		if flagInput == "" && !flagSim {
			return fmt.Errorf("need --input FILE or --sim")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		codeGen := simcode.Generator()
		events := telemetry.NewLogEventSink(log)
		reporter := telemetry.MultiReporter{telemetry.NewLogReporter(log)}
		if flagWebAddr != "" {
			hub := telemetry.NewHub(500)
			reporter = append(reporter, hub)
			mux := http.NewServeMux()
			mux.Handle("/telemetry", hub)
			go func() {
				if err := http.ListenAndServe(flagWebAddr, mux); err != nil {
					log.Error("telemetry server", logging.F("err", err))
				}
			}()
			log.Info("telemetry server listening", logging.F("addr", flagWebAddr))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(cfg.Channels))
		for id, chCfg := range cfg.Channels {
			eng, err := tracking.NewEngine(tracking.Config{
				ChannelID:          id,
				IFFreqHz:           cfg.Receiver.IFFreqHz,
				FsInHz:             cfg.Receiver.SampleRateHz,
				PRNLenNominal:      cfg.PRNLenNominal(),
				PLLBwHz:            cfg.Tracking.PLLBwHz,
				DLLBwHz:            cfg.Tracking.DLLBwHz,
				EarlyLateChips:     cfg.Tracking.EarlyLateChips,
				VeryEarlyLateChips: cfg.Tracking.VeryEarlyLateChips,
				LockThreshold:      cfg.Tracking.LockThreshold,
				DumpEnabled:        cfg.Receiver.DumpEnabled,
				DumpPathPrefix:     cfg.Receiver.DumpPathPrefix,
				CodeGen:            codeGen,
				Events:             events,
				Logger:             log,
			})
			if err != nil {
				return err
			}
			signalID, _ := gnss.ParseSignal(chCfg.Signal)
			systemID, _ := gnss.ParseSystem(chCfg.System)
			eng.SetAcquisition(tracking.AcqResult{
				PRN:          chCfg.PRN,
				Signal:       signalID,
				System:       systemID,
				DelaySamples: chCfg.AcqDelaySamples,
				DopplerHz:    chCfg.AcqDopplerHz,
			})
			if err := eng.StartTracking(); err != nil {
				eng.Close()
				return err
			}

			src, err := channelSource(cfg, chCfg, codeGen)
			if err != nil {
				eng.Close()
				return err
			}

			ch := receiver.NewChannel(eng, src, reporter, log.With(logging.F("channel", id)))
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer eng.Close()
				defer src.Close()
				if err := ch.Run(ctx); err != nil && err != context.Canceled {
					errs <- err
				}
			}()
		}

		wg.Wait()
		stop()
		select {
		case err := <-errs:
			return err
		default:
			return nil
		}
	},
}

// channelSource builds the per-channel sample source: the configured IQ file
// or a simulated signal for the channel's own satellite.
func channelSource(cfg config.Config, ch config.Channel, codeGen gnss.CodeGenerator) (source.Source, error) {
	if flagInput != "" {
		return source.NewFileSource(flagInput)
	}
	signalID, _ := gnss.ParseSignal(ch.Signal)
	chips, err := codeGen(signalID, ch.PRN)
	if err != nil {
		return nil, err
	}
	code, err := gnss.SampledCode(chips)
	if err != nil {
		return nil, err
	}
	gen := source.NewE1(code, source.E1Params{
		FsHz:         cfg.Receiver.SampleRateHz,
		DopplerHz:    flagSimDoppler,
		DelaySamples: flagSimDelay,
		NoiseStd:     flagSimNoise,
		Seed:         int64(ch.PRN),
	})
	var src source.Source = source.NewSynth(gen)
	if flagSeconds > 0 {
		src = source.NewLimit(src, uint64(flagSeconds*cfg.Receiver.SampleRateHz))
	}
	return src, nil
}

func init() {
	trackCmd.Flags().StringVar(&flagInput, "input", "", "IQ capture file (interleaved float32 I/Q)")
	trackCmd.Flags().BoolVar(&flagSim, "sim", false, "track a simulated signal instead of a file")
	trackCmd.Flags().Float64Var(&flagSimDoppler, "sim-doppler", 0, "simulated carrier offset in Hz")
	trackCmd.Flags().Float64Var(&flagSimDelay, "sim-delay", 0, "simulated code delay in samples")
	trackCmd.Flags().Float64Var(&flagSimNoise, "sim-noise", 0, "simulated noise standard deviation")
	trackCmd.Flags().Float64Var(&flagSeconds, "seconds", 10, "signal duration for --sim")
	trackCmd.Flags().StringVar(&flagWebAddr, "web", "", "serve telemetry history as JSON on this address")
	rootCmd.AddCommand(trackCmd)
}
