// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/formats"
	"github.com/ik5/audwave/internal/queue"
	"github.com/ik5/audwave/store"
)

// await runs fn on q and waits for its result. When ctx ends first the task
// still runs, but its result is dropped.
func await[T any](ctx context.Context, q *queue.Queue, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	done := make(chan result, 1)
	if err := q.Submit(func() {
		v, err := fn()
		done <- result{v, err}
	}); err != nil {
		var zero T
		return zero, fmt.Errorf("%s queue: %w", q.Name(), err)
	}

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ImportFile copies src into dir and stores it as a new record. The record
// starts with an empty waveform of LongSampleCount values, and a decode on the
// processing queue fills it in. The copy runs on the import queue and
// ImportFile returns once the record is stored.
func (c *Coordinator) ImportFile(ctx context.Context, src, dir string) (*store.Record, error) {
	return await(ctx, c.queues.Import, func() (*store.Record, error) {
		return c.importFile(ctx, src, dir)
	})
}

// LoadRecord reads record id on the loading queue.
func (c *Coordinator) LoadRecord(ctx context.Context, id int64) (*store.Record, error) {
	return await(ctx, c.queues.Loading, func() (*store.Record, error) {
		return c.store.GetRecord(ctx, id)
	})
}

func (c *Coordinator) importFile(ctx context.Context, src, dir string) (*store.Record, error) {
	if !formats.IsDecodable(src) {
		return nil, fmt.Errorf("%s: %w", src, decoder.ErrUnsupportedExtension)
	}

	log := c.log.With("import", filepath.Base(src))

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return nil, err
	}

	fi, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	var durationMs int64
	if d, err := c.probe(ctx, dst); err != nil {
		log.Warnf("session: probing %s: %v, duration comes from the decode", dst, err)
	} else {
		durationMs = d.Milliseconds()
	}

	ext := filepath.Ext(dst)
	now := time.Now()

	rec, err := c.store.InsertRecord(ctx, &store.Record{
		Name:       strings.TrimSuffix(filepath.Base(dst), ext),
		DurationMs: durationMs,
		Created:    fi.ModTime(),
		Added:      now,
		Path:       dst,
		Format:     strings.ToLower(strings.TrimPrefix(ext, ".")),
		Size:       fi.Size(),
		Amps:       make([]int, c.policy.LongSampleCount()),
	})
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	log.Infof("session: imported %s as record %d, %d ms", dst, rec.ID, durationMs)

	if err := c.DecodeRecordWaveform(rec); err != nil {
		log.Warnf("session: skipping decode of %s: %v", dst, err)
	}

	return rec, nil
}

// copyFile copies src to dst, which must not exist yet. A partial copy is
// removed.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", dst, ErrFileExists)
		}
		return fmt.Errorf("%w", err)
	}

	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}

	return nil
}
