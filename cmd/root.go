// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/ik5/audwave/config"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/waveform"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string
	verbose bool
	logger  logging.Logger = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "audwave",
	Short: "Record audio and extract waveform envelopes",
	Long: `audwave records from the default capture device into WAV or M4A files,
keeps track of the recordings in a local store and turns audio files into
normalized amplitude envelopes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}

		logger, err = logging.New(logging.Options{Name: "audwave", Level: level, Path: cfg.Log.Path})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./audwave.yaml or $XDG_CONFIG_HOME/audwave/audwave.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(zoomCmd)
	rootCmd.AddCommand(configCmd)
}

func policy() waveform.Policy {
	return waveform.Policy{ScreenWidthDp: cfg.Waveform.ScreenWidthDp}
}

func decoderOptions() []decoder.Option {
	return []decoder.Option{
		decoder.WithBackend(decoder.Backend(cfg.Decoder.Backend)),
		decoder.WithFFmpeg(cfg.Decoder.FFmpegPath, cfg.Decoder.FFprobePath),
		decoder.WithPolicy(policy()),
		decoder.WithLogger(logger),
		decoder.WithContextCancel(),
	}
}
