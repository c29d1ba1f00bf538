// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"context"
	"errors"
	"testing"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/internal/audiotest"
)

func rampTone(frames int) []int16 {
	out := make([]int16, frames)
	for i := range out {
		amp := int16(i * 30000 / frames)
		if i%2 == 1 {
			amp = -amp
		}
		out[i] = amp
	}
	return out
}

func TestEnvelopeFromFile(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteWAVFile(t, "ramp.wav", 8000, 1, rampTone(8000*2))

	tests := []struct {
		name    string
		length  int
		scale   float64
		wantLen int
		wantMax int
	}{
		{"native length", 0, 0, 50, DefaultScale},
		{"shrunk", 20, 100, 20, 100},
		{"stretched", 120, 64, 120, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, err := EnvelopeFromFile(context.Background(), path, tt.length, tt.scale, decoder.WithBackend(decoder.BackendNative))
			if err != nil {
				t.Fatalf("EnvelopeFromFile() error = %v", err)
			}

			if env.SampleRate != 8000 || env.Channels != 1 {
				t.Errorf("format = %d Hz x %d, want 8000 Hz x 1", env.SampleRate, env.Channels)
			}
			if len(env.Gains) != 50 {
				t.Errorf("len(Gains) = %d, want 50", len(env.Gains))
			}
			if len(env.Values) != tt.wantLen {
				t.Fatalf("len(Values) = %d, want %d", len(env.Values), tt.wantLen)
			}

			peak := 0
			for i, v := range env.Values {
				if v < 0 || v > tt.wantMax {
					t.Errorf("Values[%d] = %d, outside [0, %d]", i, v, tt.wantMax)
				}
				peak = max(peak, v)
			}
			if peak == 0 {
				t.Error("envelope of a rising ramp is flat")
			}
		})
	}
}

func TestEnvelopeFromFile_Errors(t *testing.T) {
	t.Parallel()

	if _, err := EnvelopeFromFile(context.Background(), "notes.txt", 0, 0); !errors.Is(err, decoder.ErrUnsupportedExtension) {
		t.Errorf("EnvelopeFromFile(.txt) error = %v, want ErrUnsupportedExtension", err)
	}

	empty := audiotest.EmptyFile(t, "empty.wav")
	if _, err := EnvelopeFromFile(context.Background(), empty, 0, 0, decoder.WithBackend(decoder.BackendNative)); err == nil {
		t.Error("EnvelopeFromFile(empty) error = nil, want error")
	}
}

func TestEnvelope_Zoom(t *testing.T) {
	t.Parallel()

	env := Envelope{Values: []int{10, 20, 30, 40}}
	levels := env.Zoom()

	wantLens := []int{8, 4, 2, 1, 0}
	for i, want := range wantLens {
		if len(levels[i]) != want {
			t.Errorf("len(level %d) = %d, want %d", i, len(levels[i]), want)
		}
	}
	if levels[2][0] != 15 || levels[2][1] != 35 {
		t.Errorf("level 2 = %v, want [15 35]", levels[2])
	}
}

func BenchmarkEnvelopeFromFile(b *testing.B) {
	path := audiotest.WriteWAVFile(b, "bench.wav", 44100, 2, audiotest.Tone(44100*5, 2, 50, 12000))
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := EnvelopeFromFile(ctx, path, 600, 0, decoder.WithBackend(decoder.BackendNative)); err != nil {
			b.Fatal(err)
		}
	}
}
