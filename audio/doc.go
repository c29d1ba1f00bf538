// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives shared by every format.
//
// This package contains:
//   - Source interface for PCM input
//   - Decoder and Prober interfaces implemented by the formats packages
//   - Format descriptors and a Registry keyed by file extension
//
// # Source Interface
//
// The Source interface is the foundation of decoding:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// The streaming decoder reads a Source until io.EOF and turns the float
// samples into 16-bit PCM before extracting amplitudes.
//
// # Format Registry
//
// A Format bundles a decoder, an optional prober, a MIME type and the file
// extensions it answers to:
//
//	registry := audio.NewRegistry()
//	registry.Register(audio.Format{
//	    Name:       "wav",
//	    MIME:       "audio/wav",
//	    Extensions: []string{"wav"},
//	    Decoder:    wav.Decoder{},
//	    Prober:     wav.Prober{},
//	})
//	dec, _ := registry.Get(".WAV")
//
// Lookups are case-insensitive and ignore a leading dot. ByMIME resolves the
// format for a track reported by a container extractor.
//
// # Probing
//
// ProbeFile reports sample rate, channel count and duration without decoding
// the whole stream. The recording coordinator uses it to read the real length
// of a finished file, since the live timer is reset on stop.
//
// # Samples
//
// Sources hand out interleaved float32 frames in [-1, 1]. ReadSamples only
// returns whole frames, so dst must hold at least one frame or
// ErrInvalidDstSize is returned. The end of a stream is io.EOF, possibly
// together with the last samples:
//
//	n, err := src.ReadSamples(buf)
//	consume(buf[:n])
//	if errors.Is(err, io.EOF) {
//	    return nil
//	}
package audio
