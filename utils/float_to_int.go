// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a [-1,1] sample to PCM16. Positive values scale by
// 32767 and negative ones by 32768 so both ends of the range are reachable.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(x * 32768.0)
	}
	return int16(x * 32767.0)
}

// AppendPCM16LE appends samples to dst as little-endian 16-bit PCM.
func AppendPCM16LE(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		v := uint16(Float32ToInt16(s))
		dst = append(dst, byte(v), byte(v>>8))
	}

	return dst
}
