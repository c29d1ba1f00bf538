// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"context"
	"fmt"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/waveform"
)

// DefaultScale is the height of a normalized envelope.
const DefaultScale = 255

// Envelope is the decoded and normalized waveform of one file.
type Envelope struct {
	DurationUs int64
	SampleRate int
	Channels   int
	// Gains is the decoder output, one peak per display unit.
	Gains []int
	// Values is Gains normalized into [0, scale].
	Values []int
}

// EnvelopeFromFile decodes path and normalizes the gains to length values
// in [0, scale]. A length of zero or less keeps one value per gain and a
// non-positive scale means DefaultScale.
//
// This is a convenience wrapper around the decoder and waveform packages:
//
//	env, err := audwave.EnvelopeFromFile(ctx, "take.wav", 600, 0)
//	if err != nil {
//	    return err
//	}
//	draw(env.Values)
func EnvelopeFromFile(ctx context.Context, path string, length int, scale float64, opts ...decoder.Option) (Envelope, error) {
	res, err := decoder.New(opts...).Decode(ctx, path, decoder.ListenerFuncs{})
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", path, err)
	}

	if length <= 0 {
		length = len(res.Gains)
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	return Envelope{
		DurationUs: res.DurationUs,
		SampleRate: res.SampleRate,
		Channels:   res.Channels,
		Gains:      res.Gains,
		Values:     waveform.Normalize(res.Gains, length, scale),
	}, nil
}

// Zoom derives the trim view levels from the normalized values.
func (e Envelope) Zoom() [waveform.ZoomLevelCount][]int {
	return waveform.ZoomLevels(e.Values)
}
