// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/ik5/audwave/formats/wav"
	"github.com/ik5/audwave/utils"
)

// sink is where captured PCM16 blocks go while recording.
type sink interface {
	open(path string, channels, sampleRate, bitrate int) error
	begin() error
	write(block []byte) error
	amplitude() int
	canPause() bool
	finish() error
}

// wavSink writes raw PCM behind a zeroed header that is patched on finish.
type wavSink struct {
	f          *os.File
	channels   int
	sampleRate int
	amp        atomic.Int64
}

func (s *wavSink) open(path string, channels, sampleRate, _ int) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := wav.WritePlaceholder(f); err != nil {
		f.Close()
		return err
	}

	s.f = f
	s.channels = channels
	s.sampleRate = sampleRate
	s.amp.Store(0)

	return nil
}

func (s *wavSink) begin() error { return nil }

func (s *wavSink) write(block []byte) error {
	s.amp.Store(int64(utils.MeanAbsPCM16(block)))

	if _, err := s.f.Write(block); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *wavSink) amplitude() int { return int(s.amp.Load()) }
func (s *wavSink) canPause() bool { return true }

func (s *wavSink) finish() error {
	if s.f == nil {
		return nil
	}
	defer func() { s.f = nil }()

	fi, err := s.f.Stat()
	if err != nil {
		s.f.Close()
		return fmt.Errorf("%w", err)
	}

	if err := wav.PatchHeader(s.f, fi.Size(), s.channels, s.sampleRate); err != nil {
		s.f.Close()
		return err
	}

	return s.f.Close()
}

// encoderSink feeds an Encoder and reports the peak since the last tick.
type encoderSink struct {
	newEncoder EncoderFactory
	enc        Encoder
	peak       atomic.Int64
}

func (s *encoderSink) open(path string, channels, sampleRate, bitrate int) error {
	enc, err := s.newEncoder(path, channels, sampleRate, bitrate)
	if err != nil {
		return err
	}

	s.enc = enc
	s.peak.Store(0)

	return nil
}

func (s *encoderSink) begin() error { return s.enc.Start() }

func (s *encoderSink) write(block []byte) error {
	p := int64(utils.PeakAbsPCM16(block))
	for {
		cur := s.peak.Load()
		if p <= cur || s.peak.CompareAndSwap(cur, p) {
			break
		}
	}

	if _, err := s.enc.Write(block); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *encoderSink) amplitude() int { return int(s.peak.Swap(0)) }
func (s *encoderSink) canPause() bool { return s.enc.CanPause() }

func (s *encoderSink) finish() error {
	if s.enc == nil {
		return nil
	}
	defer func() { s.enc = nil }()

	return s.enc.Close()
}
