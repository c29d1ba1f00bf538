// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"
	"time"

	"github.com/ik5/audwave/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// ReadSamples reads whole frames only. oggvorbis counts interleaved values,
// not frames, in its return.
func (s *source) ReadSamples(dst []float32) (int, error) {
	usable := len(dst) / s.channels * s.channels
	if usable == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, audio.ErrInvalidDstSize
	}

	n, err := s.dec.Read(dst[:usable])
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if dec.Channels() <= 0 {
		return nil, ErrNoChannels
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

// Prober reads the identification header and the granule position of the
// last page.
type Prober struct{}

func (Prober) Probe(r io.ReadSeeker) (audio.Info, error) {
	length, format, err := oggvorbis.GetLength(r)
	if err != nil {
		return audio.Info{}, fmt.Errorf("%w", err)
	}
	if format.SampleRate <= 0 {
		return audio.Info{}, ErrNoChannels
	}

	return audio.Info{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Duration:   time.Duration(length) * time.Second / time.Duration(format.SampleRate),
	}, nil
}
