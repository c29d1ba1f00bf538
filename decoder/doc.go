// SPDX-License-Identifier: EPL-2.0

// Package decoder extracts gain series from audio files.
//
// A decode job selects the first audio track of an Extractor, then drives a
// Codec through its buffer protocol: empty input buffers are filled with
// packets and queued, decoded PCM16 output buffers are folded into gains and
// released. One gain is produced per frame window, sized by
// waveform.Policy from the track duration.
//
//	d := decoder.New(decoder.WithBackend(decoder.BackendAuto))
//	res, err := d.Decode(ctx, "take1.wav", decoder.ListenerFuncs{})
//	env := waveform.Normalize(res.Gains, len(res.Gains), 255)
//
// Packets are normally batched into each input buffer. If the codec fails in
// that mode the whole job is rebuilt with a new extractor and codec and fed
// one packet at a time. A failure of the retry is reported as
// ErrDecodeFailed. Listeners see a single error either way.
//
// A running job cannot be cancelled unless the decoder was built with
// WithContextCancel; callers that lose interest simply ignore the result.
package decoder
