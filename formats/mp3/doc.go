// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit little-endian stereo, even for mono input,
// so every Source from this package reports two channels:
//
//	source, err := mp3.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// Prober needs a seekable input. go-mp3 scans the frame headers once to learn
// the decoded byte length, and the duration is length/4 frames at the stream
// sample rate.
package mp3
