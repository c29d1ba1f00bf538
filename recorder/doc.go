// SPDX-License-Identifier: EPL-2.0

// Package recorder captures microphone audio into a file.
//
// A Backend moves through Unprepared, Prepared, Recording, Paused and
// Stopped. Two variants share the lifecycle: NewPCM writes a 16-bit WAV whose
// header is patched once capture ends, and NewCompressed pipes capture into
// an Encoder, ffmpeg producing AAC by default. While recording a progress
// tick reports the elapsed milliseconds and the current amplitude.
//
// Capture comes from a Device. MalgoDevice reads the default input through
// miniaudio.
package recorder
