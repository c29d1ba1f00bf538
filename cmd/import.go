// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Copy an audio file into the recording directory and store it",
	Long: `Copy <file> into the recording directory and add it as a record. The record
is stored first with an empty waveform, which a decode of the file then fills
in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return importFile(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func importFile(ctx context.Context, out, status io.Writer, src string) error {
	if err := os.MkdirAll(cfg.Recording.Directory, 0o755); err != nil {
		return fmt.Errorf("failed to create recording directory: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	coord := newCoordinator(newBackend(), st)
	defer coord.Close()

	w := &decodeWaiter{console: &console{out: status}, done: make(chan struct{})}
	coord.AddObserver(w)

	rec, err := coord.ImportFile(ctx, src, cfg.Recording.Directory)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", src, err)
	}

	fmt.Fprintf(status, "imported %s as record %d\n", rec.Path, rec.ID)

	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	rec, err = coord.LoadRecord(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load record: %w", err)
	}

	fmt.Fprintf(out, "record %d: %s, %v, %d gains, waveform processed: %t\n",
		rec.ID, rec.Name, time.Duration(rec.DurationMs)*time.Millisecond, len(rec.Amps), rec.WaveformProcessed)

	return w.failure()
}

// decodeWaiter is a console that also signals the end of the first decode.
type decodeWaiter struct {
	*console

	once sync.Once
	done chan struct{}
}

func (w *decodeWaiter) OnRecordFinishProcessing() {
	w.console.OnRecordFinishProcessing()
	w.once.Do(func() { close(w.done) })
}
