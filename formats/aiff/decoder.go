// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audwave/audio"
)

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec        aiffReader
	sampleRate int
	channels   int
	fullScale  float32
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) / s.fullScale
	}

	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// fullScale maps a bit depth to the magnitude of its most negative sample.
func fullScale(bitDepth int) (float32, bool) {
	switch bitDepth {
	case 8:
		return 128.0, true
	case 16:
		return 32768.0, true
	case 24:
		return 8388608.0, true
	case 32:
		return 2147483648.0, true
	}
	return 0, false
}

// seekable returns r when it can seek, otherwise buffers it in memory since
// go-audio/aiff needs an io.ReadSeeker.
func seekable(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}

	return bytes.NewReader(data), nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := seekable(r)
	if err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	scale, ok := fullScale(int(dec.BitDepth))
	if !ok {
		return nil, ErrUnsupportedBitDepth
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		fullScale:  scale,
	}, nil
}

type Prober struct{}

func (Prober) Probe(r io.ReadSeeker) (audio.Info, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Info{}, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return audio.Info{}, ErrUnsupportedAiffLayout
	}

	d, err := dec.Duration()
	if err != nil {
		return audio.Info{}, fmt.Errorf("%w", err)
	}

	return audio.Info{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		Duration:   d,
	}, nil
}
