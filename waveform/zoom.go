// SPDX-License-Identifier: EPL-2.0

package waveform

// ZoomLevelCount is the number of zoom levels ZoomLevels produces.
const ZoomLevelCount = 5

// ZoomLevels derives the trim view levels from one envelope. Level 0 is
// interpolated to twice the length, level 1 is env itself and each following
// level halves the one before by pairwise averaging.
func ZoomLevels(env []int) [ZoomLevelCount][]int {
	var levels [ZoomLevelCount][]int

	levels[1] = append([]int(nil), env...)
	if levels[1] == nil {
		levels[1] = []int{}
	}

	l0 := make([]int, 2*len(env))
	for i, v := range env {
		if i == 0 {
			l0[0] = v / 2
		} else {
			l0[2*i] = (env[i-1] + v) / 2
		}
		l0[2*i+1] = v
	}
	levels[0] = l0

	for k := 2; k < ZoomLevelCount; k++ {
		levels[k] = halve(levels[k-1])
	}

	return levels
}

func halve(prev []int) []int {
	out := make([]int, len(prev)/2)
	for j := range out {
		out[j] = (prev[2*j] + prev[2*j+1]) / 2
	}

	return out
}
