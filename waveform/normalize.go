// SPDX-License-Identifier: EPL-2.0

package waveform

import "math"

const histogramBuckets = 256

// Calibrate runs the histogram contrast stretch over raw. minGain is the
// bucket where the low 5% of samples ends and maxGain the bucket where the
// top 1% begins, never below 2. scaleFactor maps raw into the 0..255 range.
func Calibrate(raw []int) (minGain, maxGain int, scaleFactor float64) {
	if len(raw) == 0 {
		return 0, 2, 1
	}

	peak := raw[0]
	for _, v := range raw[1:] {
		peak = max(peak, v)
	}

	scaleFactor = 1
	if peak > 255 {
		scaleFactor = 255 / float64(peak)
	}

	var hist [histogramBuckets]int
	for _, v := range raw {
		hist[bucket(v, scaleFactor)]++
	}

	n := len(raw)

	lowThreshold := n / 20
	sum := 0
	for v := range histogramBuckets {
		sum += hist[v]
		if sum >= lowThreshold {
			minGain = v
			break
		}
	}

	// at least one sample so that short inputs calibrate to their own peak
	highThreshold := max(n/100, 1)
	sum = 0
	maxGain = 2
	for v := histogramBuckets - 1; v >= 0; v-- {
		sum += hist[v]
		if sum >= highThreshold {
			maxGain = max(v, 2)
			break
		}
	}

	return minGain, maxGain, scaleFactor
}

func bucket(v int, scaleFactor float64) int {
	b := int(math.Round(float64(v) * scaleFactor))
	return min(max(b, 0), histogramBuckets-1)
}

// Heights maps every raw gain to a [0,1] height using the calibration.
// The response is quadratic.
func Heights(raw []int) []float64 {
	minGain, maxGain, scaleFactor := Calibrate(raw)

	span := float64(max(maxGain-minGain, 1))

	heights := make([]float64, len(raw))
	for i, v := range raw {
		x := (float64(v)*scaleFactor - float64(minGain)) / span
		x = min(max(x, 0), 1)
		heights[i] = x * x
	}

	return heights
}

// Normalize turns raw gains into an envelope of exactly targetLength values
// in [0, scale]. Empty input or a non-positive target yields an empty
// envelope.
func Normalize(raw []int, targetLength int, scale float64) []int {
	if len(raw) == 0 || targetLength <= 0 {
		return []int{}
	}

	heights := Heights(raw)
	if len(heights) != targetLength {
		heights = Resample(heights, targetLength)
	}

	limit := int(max(scale, 0))

	out := make([]int, len(heights))
	for i, h := range heights {
		out[i] = min(max(int(h*scale), 0), limit)
	}

	return out
}

// Resample stretches or shrinks values to targetLength entries. When the
// source is at most twice as long as the target every output picks the
// nearest earlier source entry. Longer sources are summed over a window of
// ceil(ratio) entries and divided by the ratio.
func Resample(values []float64, targetLength int) []float64 {
	if len(values) == 0 || targetLength <= 0 {
		return []float64{}
	}

	rawLen := len(values)
	out := make([]float64, targetLength)

	if rawLen <= 2*targetLength {
		for i := range out {
			out[i] = values[i*rawLen/targetLength]
		}
		return out
	}

	ratio := float64(rawLen) / float64(targetLength)
	window := int(math.Ceil(ratio))

	for i := range out {
		start := int(math.Floor(float64(i) * ratio))
		end := min(start+window, rawLen)

		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / ratio
	}

	return out
}
