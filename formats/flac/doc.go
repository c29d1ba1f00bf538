// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC audio through the flac package of
// github.com/faiface/beep.
//
// beep streams every input as stereo float64 pairs. A mono file comes back
// with both sides equal, so the Source reports the channel count stored in
// the STREAMINFO block and only emits the left side for mono input.
//
//	source, err := flac.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
package flac
