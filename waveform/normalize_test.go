// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"math/rand"
	"testing"
)

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 50} {
		if got := Normalize(nil, n, 100); len(got) != 0 {
			t.Errorf("Normalize(nil, %d) = %v, want empty", n, got)
		}
	}

	if got := Normalize([]int{1, 2, 3}, 0, 100); len(got) != 0 {
		t.Errorf("Normalize(x, 0) = %v, want empty", got)
	}
}

func TestNormalize_Bounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		name   string
		n      int
		target int
		maxVal int
		scale  float64
	}{
		{"identity length", 300, 300, 180, 100},
		{"upsample", 50, 400, 90, 64},
		{"nearest downsample", 500, 300, 255, 255},
		{"summed downsample", 5000, 600, 4000, 255},
		{"negative input", 200, 100, 50, 10},
		{"single value", 1, 10, 5, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := make([]int, tt.n)
			for i := range raw {
				raw[i] = rng.Intn(tt.maxVal+1) - tt.maxVal/4
			}

			got := Normalize(raw, tt.target, tt.scale)
			if len(got) != tt.target {
				t.Fatalf("len = %d, want %d", len(got), tt.target)
			}
			for i, v := range got {
				if v < 0 || float64(v) > tt.scale {
					t.Fatalf("value[%d] = %d outside [0, %v]", i, v, tt.scale)
				}
			}
		})
	}
}

func TestNormalize_ScaleInvariant(t *testing.T) {
	t.Parallel()

	raw := make([]int, 400)
	for i := range raw {
		raw[i] = (i*37)%50 + 1
	}

	want := Normalize(raw, len(raw), 200)

	// 50*5 stays inside the 0..255 histogram range
	for _, k := range []int{2, 3, 5} {
		scaled := make([]int, len(raw))
		for i, v := range raw {
			scaled[i] = v * k
		}

		got := Normalize(scaled, len(scaled), 200)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("k=%d value[%d] = %d, want %d", k, i, got[i], want[i])
			}
		}
	}
}

func TestCalibrate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       []int
		wantMin   int
		wantMax   int
		wantScale float64
	}{
		{"empty", nil, 0, 2, 1},
		{"flat low values floor max at 2", []int{1, 1, 1}, 0, 2, 1},
		{"short input peaks at max", []int{0, 10, 40}, 0, 40, 1},
		{"large values scale down", []int{0, 510}, 0, 255, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			minGain, maxGain, scale := Calibrate(tt.raw)
			if minGain != tt.wantMin || maxGain != tt.wantMax || scale != tt.wantScale {
				t.Errorf("Calibrate() = %d, %d, %v, want %d, %d, %v",
					minGain, maxGain, scale, tt.wantMin, tt.wantMax, tt.wantScale)
			}
		})
	}
}

func TestCalibrate_Percentiles(t *testing.T) {
	t.Parallel()

	// 100 samples: 10 zeros, 88 at 100, one 200 and one 250
	raw := make([]int, 0, 100)
	for range 10 {
		raw = append(raw, 0)
	}
	for range 88 {
		raw = append(raw, 100)
	}
	raw = append(raw, 200, 250)

	minGain, maxGain, _ := Calibrate(raw)
	if minGain != 0 {
		t.Errorf("minGain = %d, want 0", minGain)
	}
	if maxGain != 250 {
		t.Errorf("maxGain = %d, want 250", maxGain)
	}

	// 5 zeros reach the 5% mark exactly; with 4 the low edge moves up
	raw = raw[1:]
	raw = append(raw, 100)
	if minGain, _, _ = Calibrate(raw); minGain != 0 {
		t.Errorf("minGain with 9 zeros = %d, want 0", minGain)
	}

	low := []int{0, 0, 0, 0}
	for range 96 {
		low = append(low, 60)
	}
	if minGain, _, _ = Calibrate(low); minGain != 60 {
		t.Errorf("minGain with 4 zeros = %d, want 60", minGain)
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     []float64
		target int
		want   []float64
	}{
		{"ratio two picks nearest", []float64{10, 20, 30, 40}, 2, []float64{10, 30}},
		{"identity keeps order", []float64{10, 20, 30, 40}, 4, []float64{10, 20, 30, 40}},
		{"upsample repeats", []float64{1, 2}, 4, []float64{1, 1, 2, 2}},
		{"ratio three sums window", []float64{3, 3, 3, 6, 6, 6}, 2, []float64{3, 6}},
		{"fractional ratio", []float64{1, 1, 1, 1, 1, 1, 1}, 3, []float64{3.0 / (7.0 / 3.0), 3.0 / (7.0 / 3.0), 1.0 / (7.0 / 3.0) * 3}},
		{"empty", nil, 3, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resample(tt.in, tt.target)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if diff := got[i] - tt.want[i]; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkNormalize(b *testing.B) {
	raw := make([]int, 20000)
	for i := range raw {
		raw[i] = (i * 7919) % 300
	}

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		_ = Normalize(raw, 600, 255)
	}
}
