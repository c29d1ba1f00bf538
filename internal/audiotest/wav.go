// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audwave/formats/wav"
)

// WAVBytes encodes interleaved PCM16 samples as a canonical WAV file.
func WAVBytes(tb testing.TB, sampleRate, channels int, samples []int16) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, sampleRate, channels, samples); err != nil {
		tb.Fatalf("encoding wav: %v", err)
	}

	return buf.Bytes()
}

// WriteWAVFile writes a WAV file named name under a fresh temp dir and
// returns its path.
func WriteWAVFile(tb testing.TB, name string, sampleRate, channels int, samples []int16) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, WAVBytes(tb, sampleRate, channels, samples), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}

	return path
}

// EmptyFile creates a zero length file, the shape recorders expect before
// Prepare.
func EmptyFile(tb testing.TB, name string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		tb.Fatalf("creating %s: %v", path, err)
	}

	return path
}

// Tone returns frames*channels samples of a square wave alternating between
// +amp and -amp every period frames.
func Tone(frames, channels, period int, amp int16) []int16 {
	out := make([]int16, 0, frames*channels)
	for f := range frames {
		v := amp
		if (f/max(period, 1))%2 == 1 {
			v = -amp
		}
		for range channels {
			out = append(out, v)
		}
	}

	return out
}
