// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/formats"
	"github.com/ik5/audwave/recorder"
	"github.com/ik5/audwave/session"
	"github.com/ik5/audwave/store"
	"github.com/spf13/cobra"
)

var (
	recordDuration time.Duration
	recordFormat   string
)

var recordCmd = &cobra.Command{
	Use:   "record <name>",
	Short: "Record from the default capture device",
	Long: `Record from the default capture device into <name>.wav or <name>.m4a in the
recording directory. Press Ctrl+C to stop, or pass --duration. The recording
is stored, then decoded again to replace the live envelope.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if recordDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, recordDuration)
			defer cancel()
		}

		if recordFormat != "" {
			cfg.Recording.Format = recordFormat
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		return record(ctx, cmd.ErrOrStderr(), args[0])
	},
}

func init() {
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "stop after this long (default until Ctrl+C)")
	recordCmd.Flags().StringVarP(&recordFormat, "format", "f", "", "wav or m4a (overrides config)")
}

func newBackend() recorder.Backend {
	opts := []recorder.Option{
		recorder.WithLogger(logger),
		recorder.WithInterval(cfg.Recording.ProgressInterval),
	}

	if cfg.Recording.Format == "m4a" {
		return recorder.NewCompressed(recorder.FFmpegEncoderFactory(cfg.Decoder.FFmpegPath), opts...)
	}
	return recorder.NewPCM(opts...)
}

func openStore() (store.Store, error) {
	if cfg.Storage.Driver == store.DriverSQLite && cfg.Storage.DSN != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return st, nil
}

func newCoordinator(backend recorder.Backend, st store.Store) *session.Coordinator {
	prober := session.FirstOf(
		session.RegistryProber(formats.Default()),
		session.FFprobeProber(cfg.Decoder.FFprobePath),
	)

	return session.New(backend, st, decoder.New(decoderOptions()...),
		session.WithPolicy(policy()),
		session.WithLogger(logger),
		session.WithDurationProber(prober),
	)
}

func record(ctx context.Context, out io.Writer, name string) error {
	path := cfg.RecordingPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create recording directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	f.Close()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now()
	rec, err := st.InsertRecord(ctx, &store.Record{
		Name:       name,
		Created:    now,
		Added:      now,
		Path:       path,
		Format:     cfg.Recording.Format,
		SampleRate: cfg.Recording.SampleRate,
		Channels:   cfg.Recording.Channels,
		Bitrate:    cfg.Recording.Bitrate,
	})
	if err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}

	coord := newCoordinator(newBackend(), st)
	defer coord.Close()

	con := &console{out: out}
	coord.AddObserver(con)

	if err := coord.StartRecording(path, cfg.Recording.Channels, cfg.Recording.SampleRate, cfg.Recording.Bitrate, rec.ID); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}

	fmt.Fprintf(out, "recording %s (record %d), press Ctrl+C to stop\n", path, rec.ID)
	<-ctx.Done()

	if err := coord.StopRecording(); err != nil {
		return fmt.Errorf("failed to stop recording: %w", err)
	}

	// waits for the save and the decode
	coord.Close()

	return con.failure()
}

const meterWidth = 40

// console prints session events for a terminal.
type console struct {
	out io.Writer

	mu  sync.Mutex
	err error
}

func (c *console) OnPrepareRecord()     {}
func (c *console) OnStartRecord(string) {}

func (c *console) OnPauseRecord() {
	fmt.Fprintln(c.out, "\npaused")
}

func (c *console) OnRecordingProgress(elapsedMs int64, amp int) {
	bar := min(amp*meterWidth/32767, meterWidth)
	fmt.Fprintf(c.out, "\r%8.2fs |%-*s|", float64(elapsedMs)/1000, meterWidth, strings.Repeat("#", max(bar, 0)))
}

func (c *console) OnStopRecord(path string, rec *store.Record) {
	if rec == nil {
		fmt.Fprintf(c.out, "\nstopped %s\n", path)
		return
	}
	fmt.Fprintf(c.out, "\nstopped %s, %v, %d amplitudes\n",
		path, time.Duration(rec.DurationMs)*time.Millisecond, len(rec.Amps))
}

func (c *console) OnRecordProcessing() {
	fmt.Fprintln(c.out, "decoding envelope...")
}

func (c *console) OnRecordFinishProcessing() {
	fmt.Fprintln(c.out, "done")
}

func (c *console) OnError(err error) {
	fmt.Fprintf(c.out, "\nerror: %v\n", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *console) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}
