// SPDX-License-Identifier: EPL-2.0

// Package wav reads, writes and probes PCM 16-bit WAV files.
//
// # Decoding
//
// Decoder streams PCM16 from any io.Reader. It walks the RIFF chunk list,
// skipping LIST, fact and other chunks until it reaches "data":
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// A data chunk with a zero size is read until EOF. That is what a raw
// recording looks like when the process died before the header was patched.
//
// # Recording Container
//
// The raw-PCM recorder writes its file in two passes. It reserves the header
// first and fills it in once the final length is known:
//
//	wav.WritePlaceholder(f)
//	// ... append PCM16 blocks ...
//	st, _ := f.Stat()
//	wav.PatchHeader(f, st.Size(), channels, sampleRate)
//
// The patched header follows the canonical 44-byte layout:
//   - ChunkSize = dataLen + 36
//   - ByteRate = sampleRate * channels * 2
//   - BlockAlign = channels * 2
//   - BitsPerSample = 16
//   - Subchunk2Size = dataLen
//
// WriteWAV16 writes a complete file in one pass from interleaved samples.
//
// # Probing
//
// Prober uses github.com/go-audio/wav to report sample rate, channels and
// duration, including for bit depths the streaming decoder refuses.
//
// # Error Handling
//
//   - ErrNotWavFile: The input is not a RIFF/WAVE stream
//   - ErrOnlyPCM16bitSupported: The fmt chunk is not 16-bit integer PCM
//   - ErrUnsupportedWavLayout: The fmt chunk is malformed
//   - ErrMissingFmtChunk: A data chunk appeared before the fmt chunk
//   - ErrShortHeader: Fewer than 44 bytes were available
package wav
