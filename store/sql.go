// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordModel is the row form of Record. Amplitudes are stored as a JSON
// array and times as unix milliseconds.
type recordModel struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Name              string `gorm:"not null;default:''"`
	DurationMs        int64  `gorm:"not null;default:0"`
	Created           int64  `gorm:"not null;default:0"`
	Added             int64  `gorm:"not null;default:0"`
	Removed           int64  `gorm:"not null;default:0"`
	Path              string `gorm:"not null;index"`
	Format            string `gorm:"type:varchar(16);not null;default:''"`
	Size              int64  `gorm:"not null;default:0"`
	SampleRate        int    `gorm:"not null;default:0"`
	Channels          int    `gorm:"not null;default:0"`
	Bitrate           int    `gorm:"not null;default:0"`
	Bookmarked        bool   `gorm:"not null;default:false"`
	WaveformProcessed bool   `gorm:"not null;default:false"`
	AmpsData          []byte `gorm:"column:amps;type:blob"`
}

func (recordModel) TableName() string {
	return "records"
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func newRecordModel(r *Record) (*recordModel, error) {
	amps, err := json.Marshal(r.Amps)
	if err != nil {
		return nil, fmt.Errorf("encoding amps: %w", err)
	}

	return &recordModel{
		ID:                r.ID,
		Name:              r.Name,
		DurationMs:        r.DurationMs,
		Created:           toMillis(r.Created),
		Added:             toMillis(r.Added),
		Removed:           toMillis(r.Removed),
		Path:              r.Path,
		Format:            r.Format,
		Size:              r.Size,
		SampleRate:        r.SampleRate,
		Channels:          r.Channels,
		Bitrate:           r.Bitrate,
		Bookmarked:        r.Bookmarked,
		WaveformProcessed: r.WaveformProcessed,
		AmpsData:          amps,
	}, nil
}

func (m *recordModel) record() (*Record, error) {
	var amps []int
	if len(m.AmpsData) > 0 {
		if err := json.Unmarshal(m.AmpsData, &amps); err != nil {
			return nil, fmt.Errorf("decoding amps of record %d: %w", m.ID, err)
		}
	}

	return &Record{
		ID:                m.ID,
		Name:              m.Name,
		DurationMs:        m.DurationMs,
		Created:           fromMillis(m.Created),
		Added:             fromMillis(m.Added),
		Removed:           fromMillis(m.Removed),
		Path:              m.Path,
		Format:            m.Format,
		Size:              m.Size,
		SampleRate:        m.SampleRate,
		Channels:          m.Channels,
		Bitrate:           m.Bitrate,
		Bookmarked:        m.Bookmarked,
		WaveformProcessed: m.WaveformProcessed,
		Amps:              amps,
	}, nil
}

// SQLStore keeps records in a sqlite database through gorm.
type SQLStore struct {
	db *gorm.DB
}

func OpenSQL(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(&recordModel{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", dsn, err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var m recordModel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("record %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w", err)
	}

	return m.record()
}

func (s *SQLStore) UpdateRecord(ctx context.Context, r *Record) error {
	m, err := newRecordModel(r)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&recordModel{ID: r.ID}).Select("*").Omit("id").Updates(m)
	if res.Error != nil {
		return fmt.Errorf("%w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %d: %w", r.ID, ErrNotFound)
	}

	return nil
}

func (s *SQLStore) InsertRecord(ctx context.Context, r *Record) (*Record, error) {
	m, err := newRecordModel(r)
	if err != nil {
		return nil, err
	}
	m.ID = 0

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return m.record()
}

func (s *SQLStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return db.Close()
}
