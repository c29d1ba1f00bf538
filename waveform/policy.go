// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"math"
	"time"
)

const (
	ShortRecordDpPerSecond     = 25
	LongRecordThresholdSeconds = 20
	WaveformWidth              = 1.5
	MaxAmplitude               = 32767
	DefaultScreenWidthDp       = 400

	// VisualizationInterval is the live progress tick period, one tick per
	// display unit of a short recording.
	VisualizationInterval = time.Second / ShortRecordDpPerSecond
)

// Policy sizes envelopes for a display ScreenWidthDp units wide.
type Policy struct {
	ScreenWidthDp int
}

func DefaultPolicy() Policy {
	return Policy{ScreenWidthDp: DefaultScreenWidthDp}
}

func (p Policy) screenWidth() float64 {
	if p.ScreenWidthDp <= 0 {
		return DefaultScreenWidthDp
	}
	return float64(p.ScreenWidthDp)
}

// DpPerSecond is how many display units one second of audio takes. Long
// recordings are squeezed to fit WaveformWidth screens.
func (p Policy) DpPerSecond(durationSec float64) float64 {
	if durationSec <= LongRecordThresholdSeconds {
		return ShortRecordDpPerSecond
	}

	return WaveformWidth * p.screenWidth() / durationSec
}

// FrameWindow is the number of audio frames folded into one gain value.
func (p Policy) FrameWindow(sampleRate int, durationUs int64) int {
	dp := p.DpPerSecond(float64(durationUs) / 1e6)

	return max(int(float64(sampleRate)/dp), 1)
}

// LongSampleCount is the envelope length stored for long recordings.
func (p Policy) LongSampleCount() int {
	return int(WaveformWidth * p.screenWidth())
}

// ConvertAmp maps a live PCM16 amplitude into the 0..255 domain.
func ConvertAmp(amp int) int {
	return int(255 * float64(amp) / MaxAmplitude)
}

// Downsample converts the live amplitude series into the stored envelope.
// Recordings longer than the threshold always get LongSampleCount values,
// picked by nearest index while there are fewer than two ticks per value
// and averaged otherwise. Shorter ones keep one value per tick.
func (p Policy) Downsample(amps []int, durationMs int64) []int {
	count := p.LongSampleCount()

	if durationMs/1000 <= LongRecordThresholdSeconds {
		out := make([]int, len(amps))
		for i, a := range amps {
			out[i] = ConvertAmp(a)
		}
		return out
	}

	out := make([]int, count)
	rawLen := len(amps)

	if rawLen == 0 {
		return out
	}

	if rawLen < 2*count {
		for i := range out {
			out[i] = ConvertAmp(amps[i*rawLen/count])
		}
		return out
	}

	ratio := float64(rawLen) / float64(count)
	window := int(math.Ceil(ratio))

	for i := range out {
		start := int(float64(i) * ratio)
		end := min(start+window, rawLen)

		sum := 0
		for _, a := range amps[start:end] {
			sum += a
		}
		out[i] = ConvertAmp(int(float64(sum) / ratio))
	}

	return out
}
