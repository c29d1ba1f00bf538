// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"fmt"

	"github.com/ik5/audwave/internal/logging"
)

// Store persists recording metadata.
type Store interface {
	GetRecord(ctx context.Context, id int64) (*Record, error)
	UpdateRecord(ctx context.Context, r *Record) error
	// InsertRecord assigns a new ID and returns the stored copy.
	InsertRecord(ctx context.Context, r *Record) (*Record, error)
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Open returns the store selected by driver. For sqlite dsn is the database
// file, for badger a directory. An empty badger dsn keeps data in memory.
func Open(driver, dsn string, log logging.Logger) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQL(dsn)
	case DriverBadger:
		return OpenBadger(dsn, log)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
