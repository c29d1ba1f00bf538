// SPDX-License-Identifier: EPL-2.0

// Package audwave records audio and turns audio files into amplitude
// envelopes for waveform displays.
//
// The module is split by concern:
//   - audio and formats: the Source and Decoder interfaces and the builtin
//     WAV, MP3, Ogg Vorbis, AIFF and FLAC decoders
//   - decoder: the streaming decoder that extracts one peak per display
//     unit, natively or through ffmpeg
//   - waveform: histogram normalization, resampling, zoom levels and the
//     live amplitude buffer
//   - recorder: raw PCM and compressed recording backends over a capture
//     device
//   - session: the coordinator that runs one recording at a time, persists
//     it and re-decodes the result
//   - store and config: persistence and configuration
//
// # Quick Start
//
// EnvelopeFromFile decodes a file and normalizes it in one call:
//
//	env, err := audwave.EnvelopeFromFile(ctx, "take.m4a", 600, 255)
//	if err != nil {
//	    return err
//	}
//	levels := env.Zoom()
//
// For finer control build a decoder.StreamingDecoder and call
// waveform.Normalize yourself.
//
// # Recording
//
//	rec := recorder.NewPCM(recorder.WithLogger(log))
//	c := session.New(rec, st, decoder.New())
//	defer c.Close()
//	c.AddObserver(ui)
//	_ = c.StartRecording(path, 1, 44100, 0, id)
//
// The audwave command in cmd/audwave wires all of this together.
package audwave
