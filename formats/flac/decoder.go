// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/faiface/beep"
	beepflac "github.com/faiface/beep/flac"
	"github.com/ik5/audwave/audio"
)

// streamer is the part of beep.StreamSeekCloser the source uses
type streamer interface {
	Stream(samples [][2]float64) (n int, ok bool)
	Err() error
	Close() error
}

type source struct {
	s          streamer
	sampleRate int
	channels   int
	frames     [][2]float64
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return cap(s.frames) * s.channels }

func (s *source) Close() error {
	if err := s.s.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) / s.channels
	if want == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, audio.ErrInvalidDstSize
	}

	if cap(s.frames) < want {
		s.frames = make([][2]float64, want)
	}
	s.frames = s.frames[:want]

	n, ok := s.s.Stream(s.frames)
	if !ok || n == 0 {
		if err := s.s.Err(); err != nil {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i := range n {
		if s.channels == 1 {
			dst[i] = float32(s.frames[i][0])
			continue
		}
		dst[2*i] = float32(s.frames[i][0])
		dst[2*i+1] = float32(s.frames[i][1])
	}

	return n * s.channels, nil
}

func outputChannels(format beep.Format) (int, error) {
	switch {
	case format.NumChannels == 1:
		return 1, nil
	case format.NumChannels >= 2:
		return 2, nil
	}
	return 0, ErrUnsupportedChannels
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	s, format, err := beepflac.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels, err := outputChannels(format)
	if err != nil {
		s.Close()
		return nil, err
	}

	return &source{
		s:          s,
		sampleRate: int(format.SampleRate),
		channels:   channels,
		frames:     make([][2]float64, 2048),
	}, nil
}

type Prober struct{}

func (Prober) Probe(r io.ReadSeeker) (audio.Info, error) {
	s, format, err := beepflac.Decode(r)
	if err != nil {
		return audio.Info{}, fmt.Errorf("%w", err)
	}
	defer s.Close()

	channels, err := outputChannels(format)
	if err != nil {
		return audio.Info{}, err
	}

	return audio.Info{
		SampleRate: int(format.SampleRate),
		Channels:   channels,
		Duration:   format.SampleRate.D(s.Len()),
	}, nil
}
