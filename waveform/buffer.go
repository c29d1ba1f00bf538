// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"slices"
	"sync"
)

// AmplitudeBuffer is the growable series of live amplitudes captured during
// a recording. It only grows until Reset.
type AmplitudeBuffer struct {
	mu     sync.Mutex
	values []int
}

func NewAmplitudeBuffer(capacity int) *AmplitudeBuffer {
	return &AmplitudeBuffer{values: make([]int, 0, max(capacity, 0))}
}

func (b *AmplitudeBuffer) Append(v int) {
	b.mu.Lock()
	b.values = append(b.values, v)
	b.mu.Unlock()
}

func (b *AmplitudeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.values)
}

// Values returns a snapshot; later appends do not show up in it.
func (b *AmplitudeBuffer) Values() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.values)
}

// Reset drops every value but keeps the allocation.
func (b *AmplitudeBuffer) Reset() {
	b.mu.Lock()
	b.values = b.values[:0]
	b.mu.Unlock()
}
