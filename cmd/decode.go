// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ik5/audwave"
	"github.com/spf13/cobra"
)

var (
	envelopeLength int
	envelopeScale  float64
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Print the normalized envelope of an audio file",
	Long: `Decode an audio file into one peak per display unit and print the
envelope normalized to --scale, space separated on a single line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvelope(cmd, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v, %d Hz, %d ch, %d gains\n",
			args[0], time.Duration(env.DurationUs)*time.Microsecond, env.SampleRate, env.Channels, len(env.Gains))

		return printValues(cmd.OutOrStdout(), env.Values)
	},
}

func init() {
	for _, c := range []*cobra.Command{decodeCmd, zoomCmd} {
		c.Flags().IntVarP(&envelopeLength, "length", "l", 0, "envelope length (default one value per gain)")
		c.Flags().Float64VarP(&envelopeScale, "scale", "s", 0, "envelope height (default waveform.scale from config)")
	}
}

func loadEnvelope(cmd *cobra.Command, path string) (audwave.Envelope, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	scale := envelopeScale
	if scale <= 0 {
		scale = cfg.Waveform.Scale
	}

	start := time.Now()
	env, err := audwave.EnvelopeFromFile(ctx, path, envelopeLength, scale, decoderOptions()...)
	if err != nil {
		return audwave.Envelope{}, fmt.Errorf("failed to decode: %w", err)
	}
	logger.Benchmark("decode "+path, time.Since(start))

	return env, nil
}

func printValues(w io.Writer, values []int) error {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}
