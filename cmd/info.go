// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/waveform"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the tracks and envelope calibration of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		path := args[0]
		dec := decoder.New(decoderOptions()...)

		tracks, err := dec.Tracks(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to read tracks: %w", err)
		}

		res, err := dec.Decode(ctx, path, decoder.ListenerFuncs{})
		if err != nil {
			return fmt.Errorf("failed to decode: %w", err)
		}

		minGain, maxGain, scaleFactor := waveform.Calibrate(res.Gains)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "file:\t%s\n", path)
		for i, tr := range tracks {
			fmt.Fprintf(w, "track %d:\t%s, %d Hz, %d ch, %v\n",
				i, tr.MIME, tr.SampleRate, tr.Channels, time.Duration(tr.DurationUs)*time.Microsecond)
		}
		fmt.Fprintf(w, "gains:\t%d at %.2f per second\n", len(res.Gains),
			policy().DpPerSecond(float64(res.DurationUs)/1e6))
		fmt.Fprintf(w, "calibration:\tmin %d, max %d, scale %.4f\n", minGain, maxGain, scaleFactor)

		return w.Flush()
	},
}
