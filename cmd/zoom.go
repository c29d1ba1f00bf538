// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"github.com/ik5/audwave/waveform"
	"github.com/spf13/cobra"
)

var zoomLevel int

var zoomCmd = &cobra.Command{
	Use:   "zoom <file>",
	Short: "Print the zoom levels of an audio file",
	Long: `Decode an audio file and print the length of every trim view zoom
level. With --level the values of that level are printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if zoomLevel >= waveform.ZoomLevelCount {
			return fmt.Errorf("level %d out of range, want 0..%d", zoomLevel, waveform.ZoomLevelCount-1)
		}

		env, err := loadEnvelope(cmd, args[0])
		if err != nil {
			return err
		}

		levels := env.Zoom()
		if zoomLevel >= 0 {
			return printValues(cmd.OutOrStdout(), levels[zoomLevel])
		}

		for i, level := range levels {
			fmt.Fprintf(cmd.OutOrStdout(), "level %d: %d\n", i, len(level))
		}
		return nil
	},
}

func init() {
	zoomCmd.Flags().IntVar(&zoomLevel, "level", -1, "print the values of one level")
}
