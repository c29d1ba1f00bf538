// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

// Int16At reads the little-endian sample starting at byte offset i.
func Int16At(b []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(b[i:]))
}

func abs16(v int16) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}

// MeanAbsPCM16 is the average absolute value of a little-endian PCM16 block.
// A trailing odd byte is ignored.
func MeanAbsPCM16(b []byte) int {
	n := len(b) / 2
	if n == 0 {
		return 0
	}

	var sum int64
	for i := range n {
		sum += int64(abs16(Int16At(b, 2*i)))
	}

	return int(sum / int64(n))
}

// PeakAbsPCM16 is the largest absolute value in a little-endian PCM16 block.
func PeakAbsPCM16(b []byte) int {
	peak := 0
	for i := 0; i+1 < len(b); i += 2 {
		peak = max(peak, abs16(Int16At(b, i)))
	}

	return peak
}
