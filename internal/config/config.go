// Package config loads and validates the receiver configuration from a TOML
// file. Loaded values are used as they are; no CLI flag overrides them.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/junjunhencool/gnss-sdr/internal/gnss"
)

// Config is the top-level receiver configuration.
type Config struct {
	Receiver Receiver  `toml:"receiver"`
	Tracking Tracking  `toml:"tracking"`
	Channels []Channel `toml:"channel"`
}

// Receiver holds front-end parameters.
type Receiver struct {
	SampleRateHz   float64 `toml:"sample_rate_hz"`
	IFFreqHz       float64 `toml:"if_freq_hz"`
	DumpEnabled    bool    `toml:"dump"`
	DumpPathPrefix string  `toml:"dump_prefix"`
}

// Tracking holds the loop parameters shared by all channels.
type Tracking struct {
	PLLBwHz            float64 `toml:"pll_bw_hz"`
	DLLBwHz            float64 `toml:"dll_bw_hz"`
	EarlyLateChips     float64 `toml:"early_late_chips"`
	VeryEarlyLateChips float64 `toml:"very_early_late_chips"`
	LockThreshold      float64 `toml:"lock_threshold"`
}

// Channel assigns one satellite to a tracking channel, together with the
// acquisition hand-over the embedder obtained for it.
type Channel struct {
	PRN             int     `toml:"prn"`
	Signal          string  `toml:"signal"`
	System          string  `toml:"system"`
	AcqDopplerHz    float64 `toml:"acq_doppler_hz"`
	AcqDelaySamples float64 `toml:"acq_delay_samples"`
}

// Default returns the built-in configuration: a 4.092 MHz front end with the
// canonical 50/2 Hz loop bandwidths and 0.1/0.15 chip correlator spacings.
func Default() Config {
	return Config{
		Receiver: Receiver{
			SampleRateHz:   4.092e6,
			DumpPathPrefix: "trk_ch_",
		},
		Tracking: Tracking{
			PLLBwHz:            50,
			DLLBwHz:            2,
			EarlyLateChips:     0.1,
			VeryEarlyLateChips: 0.15,
			LockThreshold:      20,
		},
		Channels: []Channel{{PRN: 11, Signal: string(gnss.SignalE1B), System: "E"}},
	}
}

// Load reads a TOML configuration file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate applies the construction-time fault rules: bad rates, bandwidths
// or signal identifiers are rejected before any channel is built.
func (c Config) Validate() error {
	if c.Receiver.SampleRateHz < 2*gnss.E1CodeChipRateHz {
		return fmt.Errorf("config: sample rate %.0f Hz below 2x chip rate", c.Receiver.SampleRateHz)
	}
	if c.Tracking.PLLBwHz <= 0 {
		return fmt.Errorf("config: PLL bandwidth %.2f Hz", c.Tracking.PLLBwHz)
	}
	if c.Tracking.DLLBwHz <= 0 {
		return fmt.Errorf("config: DLL bandwidth %.2f Hz", c.Tracking.DLLBwHz)
	}
	if c.Tracking.EarlyLateChips <= 0 || c.Tracking.VeryEarlyLateChips <= c.Tracking.EarlyLateChips {
		return fmt.Errorf("config: correlator spacings %.3f/%.3f chips",
			c.Tracking.EarlyLateChips, c.Tracking.VeryEarlyLateChips)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("config: no channels")
	}
	for i, ch := range c.Channels {
		if ch.PRN <= 0 {
			return fmt.Errorf("config: channel %d: PRN %d", i, ch.PRN)
		}
		if _, err := gnss.ParseSignal(ch.Signal); err != nil {
			return fmt.Errorf("config: channel %d: %w", i, err)
		}
		if _, err := gnss.ParseSystem(ch.System); err != nil {
			return fmt.Errorf("config: channel %d: %w", i, err)
		}
	}
	return nil
}

// PRNLenNominal derives the nominal samples per PRN period for the
// configured sample rate.
func (c Config) PRNLenNominal() int {
	period := float64(gnss.E1BCodeLengthChips) / gnss.E1CodeChipRateHz
	return int(c.Receiver.SampleRateHz*period + 0.5)
}
