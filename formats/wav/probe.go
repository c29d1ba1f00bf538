// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"time"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audwave/audio"
)

// Prober reports WAV stream info using go-audio/wav, which understands every
// bit depth even though Decoder only streams PCM16.
type Prober struct{}

func (Prober) Probe(r io.ReadSeeker) (audio.Info, error) {
	dec := gowav.NewDecoder(r)
	dec.ReadInfo()
	if dec.Err() != nil || dec.NumChans < 1 {
		return audio.Info{}, ErrNotWavFile
	}

	if err := dec.FwdToPCM(); err != nil {
		return audio.Info{}, fmt.Errorf("%w", err)
	}

	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)
	bytesPerFrame := channels * int(dec.BitDepth) / 8
	if channels <= 0 || sampleRate <= 0 || bytesPerFrame <= 0 {
		return audio.Info{}, ErrUnsupportedWavLayout
	}

	pcm := int64(dec.PCMSize)
	if pcm == 0 {
		// Header never patched, count everything after it.
		end, err := r.Seek(0, io.SeekEnd)
		if err != nil {
			return audio.Info{}, fmt.Errorf("%w", err)
		}
		pcm = max(end-HeaderSize, 0)
	}

	frames := pcm / int64(bytesPerFrame)

	return audio.Info{
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(frames) * time.Second / time.Duration(sampleRate),
	}, nil
}
