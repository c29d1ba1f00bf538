// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by sources built with FailAfter.
var ErrInjected = errors.New("audiotest: injected failure")

// MockSource is an audio.Source that generates frames from a function.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	failAt     int
	closed     bool
	waveform   func(frame, channel int) float32
}

// NewMockSource creates a source of frames frames. waveform gets the frame
// index and channel and returns a value in [-1,1].
func NewMockSource(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		failAt:     -1,
		waveform:   waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// FailAfter makes ReadSamples return ErrInjected once frame has been reached.
func (m *MockSource) FailAfter(frame int) *MockSource {
	m.failAt = frame
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Closed() bool    { return m.closed }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAt >= 0 && m.pos >= m.failAt {
		return 0, ErrInjected
	}
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	count := min(len(dst)/m.channels, m.frames-m.pos)
	if m.failAt >= 0 {
		count = min(count, m.failAt-m.pos)
	}

	for f := range count {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.pos+f, ch)
		}
	}
	m.pos += count

	if m.pos >= m.frames {
		return count * m.channels, io.EOF
	}

	return count * m.channels, nil
}
