// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) audio.
//
// This package uses github.com/go-audio/aiff. Integer PCM at 8, 16, 24 and
// 32 bits is normalized to float32 in [-1.0, 1.0]:
//
//	source, err := aiff.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// go-audio/aiff needs an io.ReadSeeker. Inputs that cannot seek are read
// into memory first.
//
// # AIFF vs. WAV
//
// AIFF is big-endian and stores its sample rate as an 80-bit float. The
// decoder handles both. AIFF is not on the recording decode allow-list,
// but imported files can still be probed and decoded.
//
// # Errors
//
//   - ErrNotAiffFile: The input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: Sample size is not 8, 16, 24 or 32 bits
//   - ErrUnsupportedAiffLayout: The COMM chunk is unusable
package aiff
