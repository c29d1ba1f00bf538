// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audwave/audio"
)

// go-mp3 always yields 16-bit little-endian stereo
const (
	outputChannels = 2
	bytesPerFrame  = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// carry holds the odd byte left by a short read
	carry []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outputChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	pre := copy(s.buf, s.carry)
	s.carry = s.carry[:0]

	n, err := s.dec.Read(s.buf[pre:])
	n += pre

	samples := n / 2
	if n%2 == 1 {
		s.carry = append(s.carry, s.buf[n-1])
	}

	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 && err == nil {
		return 0, nil
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}

// Prober derives the duration from the decoded byte length go-mp3 computes
// when its input can seek.
type Prober struct{}

func (Prober) Probe(r io.ReadSeeker) (audio.Info, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return audio.Info{}, fmt.Errorf("%w", err)
	}

	return infoFromLength(dec.SampleRate(), dec.Length())
}

func infoFromLength(sampleRate int, length int64) (audio.Info, error) {
	if sampleRate <= 0 {
		return audio.Info{}, ErrInvalidSampleRate
	}
	if length < 0 {
		return audio.Info{}, ErrUnknownLength
	}

	frames := length / bytesPerFrame

	return audio.Info{
		SampleRate: sampleRate,
		Channels:   outputChannels,
		Duration:   time.Duration(frames) * time.Second / time.Duration(sampleRate),
	}, nil
}
