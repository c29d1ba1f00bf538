// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/ik5/audwave/internal/logging"
)

const (
	recordPrefix = "record/"
	sequenceKey  = "seq/record"
	// sequenceLease is how many ids are reserved per disk write.
	sequenceLease = 64
)

func recordKey(id int64) []byte {
	return []byte(recordPrefix + strconv.FormatInt(id, 10))
}

// BadgerStore keeps records as JSON values in a badger key-value store.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger opens the store in dir, or in memory when dir is empty.
func OpenBadger(dir string, log logging.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if log == nil {
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(badgerLogger{log})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", dir, err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLease)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w", err)
	}

	return &BadgerStore{db: db, seq: seq}, nil
}

func (s *BadgerStore) GetRecord(ctx context.Context, id int64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var r Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &r, nil
}

func (s *BadgerStore) UpdateRecord(ctx context.Context, r *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record %d: %w", r.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(r.ID)); err != nil {
			return err
		}
		return txn.Set(recordKey(r.ID), val)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("record %d: %w", r.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *BadgerStore) InsertRecord(ctx context.Context, r *Record) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sequences start at zero, ids at one
	n, err := s.seq.Next()
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stored := r.Clone()
	stored.ID = int64(n) + 1

	val, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(stored.ID), val)
	}); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return stored, nil
}

func (s *BadgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		s.db.Close()
		return fmt.Errorf("%w", err)
	}

	return s.db.Close()
}

// badgerLogger routes badger's log lines into logging.Logger.
type badgerLogger struct {
	logging.Logger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
