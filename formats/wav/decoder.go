// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
)

type wavSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	// remaining data bytes, -1 when the data chunk size is unknown
	remaining int64
	buf       []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) BufSize() int    { return cap(s.buf) / 2 }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	want := int64(len(dst) * 2)
	if s.remaining >= 0 && want > s.remaining {
		want = s.remaining - s.remaining%2
	}
	if want == 0 {
		return 0, io.EOF
	}

	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	if s.remaining >= 0 {
		s.remaining -= int64(samples * 2)
	}

	if samples == 0 {
		return 0, io.EOF
	}

	return samples, nil
}

type Decoder struct{}

// Decode walks the RIFF chunks up to "data", skipping anything that is not
// "fmt ", and streams the PCM that follows.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	riff := make([]byte, 12)
	if _, err := io.ReadFull(r, riff); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if !bytes.HasPrefix(riff[:4], []byte("RIFF")) || !bytes.HasPrefix(riff[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	var (
		haveFmt    bool
		channels   int
		sampleRate int
		chunk      = make([]byte, 8)
	)

	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}

		id := string(chunk[:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < fmtChunkSize {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}

			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits := binary.LittleEndian.Uint16(body[14:16])

			if audioFormat != pcmFormat || bits != bitsPerSample {
				return nil, ErrOnlyPCM16bitSupported
			}
			if channels <= 0 || sampleRate <= 0 {
				return nil, ErrUnsupportedWavLayout
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrMissingFmtChunk
			}

			// An unpatched recording carries a zero size, stream until EOF.
			remaining := size
			if size == 0 || size == 0xFFFFFFFF {
				remaining = -1
			}

			return &wavSource{
				r:          r,
				sampleRate: sampleRate,
				channels:   channels,
				remaining:  remaining,
				buf:        make([]byte, 8192),
			}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return nil, fmt.Errorf("skipping %q chunk: %w", id, err)
			}
		}
	}
}
