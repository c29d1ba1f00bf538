// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio through github.com/jfreymuth/oggvorbis.
//
//	source, err := vorbis.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// ReadSamples only fills whole frames. A dst shorter than one frame is
// rejected with audio.ErrInvalidDstSize.
//
// Prober reads the identification header for the format and the granule
// position of the last Ogg page for the length in samples.
package vorbis
