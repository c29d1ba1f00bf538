// SPDX-License-Identifier: EPL-2.0

package store

import "time"

// Record describes one recording on disk.
type Record struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	DurationMs        int64     `json:"durationMs"`
	Created           time.Time `json:"created"`
	Added             time.Time `json:"added"`
	Removed           time.Time `json:"removed"`
	Path              string    `json:"path"`
	Format            string    `json:"format"`
	Size              int64     `json:"size"`
	SampleRate        int       `json:"sampleRate"`
	Channels          int       `json:"channels"`
	Bitrate           int       `json:"bitrate"`
	Bookmarked        bool      `json:"bookmarked"`
	WaveformProcessed bool      `json:"waveformProcessed"`
	Amps              []int     `json:"amps"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	if r.Amps != nil {
		c.Amps = append([]int(nil), r.Amps...)
	}
	return &c
}
