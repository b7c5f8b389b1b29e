// Package cmd implements the gnsstrk command-line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/junjunhencool/gnss-sdr/internal/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	log logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gnsstrk",
	Short: "Galileo E1 signal-tracking receiver",
	Long: "gnsstrk runs per-satellite Galileo E1 DLL+PLL tracking channels over " +
		"recorded or simulated baseband samples and inspects their dump files.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(flagLogFormat)
		if err != nil {
			return err
		}
		log = logging.New(level, format, os.Stderr)
		logging.SetDefault(log)
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "receiver configuration file (TOML)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text|json)")
}
