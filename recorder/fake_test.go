// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audwave/internal/audiotest"
)

// fakeDevice hands scripted blocks to the capture loop.
type fakeDevice struct {
	blocks   chan []byte
	stopped  chan struct{}
	stopOnce sync.Once
	startErr error
	closed   atomic.Bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{blocks: make(chan []byte), stopped: make(chan struct{})}
}

func (d *fakeDevice) factory(int, int) (Device, error) { return d, nil }

func (d *fakeDevice) Start() error { return d.startErr }

func (d *fakeDevice) Read(p []byte) (int, error) {
	for {
		select {
		case b := <-d.blocks:
			if b == nil {
				continue
			}
			return copy(p, b), nil
		case <-d.stopped:
			return 0, io.EOF
		}
	}
}

func (d *fakeDevice) Stop() error {
	d.stopOnce.Do(func() { close(d.stopped) })
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed.Store(true)
	return nil
}

// push returns once the capture loop has handled b and asked for more.
func (d *fakeDevice) push(b []byte) {
	d.blocks <- b
	d.blocks <- nil
}

// fakeEncoder collects what it is fed.
type fakeEncoder struct {
	mu       sync.Mutex
	data     []byte
	pausable bool
	failOn   int
	writes   int
	started  bool
	closed   bool
}

func (e *fakeEncoder) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.started = true
	return nil
}

func (e *fakeEncoder) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.writes++
	if e.failOn > 0 && e.writes >= e.failOn {
		return 0, audiotest.ErrInjected
	}
	e.data = append(e.data, p...)

	return len(p), nil
}

func (e *fakeEncoder) CanPause() bool { return e.pausable }

func (e *fakeEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	return nil
}

func (e *fakeEncoder) snapshot() (data []byte, closed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]byte(nil), e.data...), e.closed
}

func (e *fakeEncoder) factory(string, int, int, int) (Encoder, error) { return e, nil }

// recordingCallback logs lifecycle events by name and keeps progress ticks
// apart.
type recordingCallback struct {
	*audiotest.EventLog

	mu       sync.Mutex
	progress []progressTick
	errs     []error
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{EventLog: audiotest.NewEventLog()}
}

func (c *recordingCallback) OnPrepareRecord()          { c.Add("prepare") }
func (c *recordingCallback) OnStartRecord(path string) { c.Add("start") }
func (c *recordingCallback) OnPauseRecord()            { c.Add("pause") }
func (c *recordingCallback) OnStopRecord(path string)  { c.Add("stop") }

func (c *recordingCallback) OnRecordProgress(elapsedMs int64, amp int) {
	c.mu.Lock()
	c.progress = append(c.progress, progressTick{elapsedMs: elapsedMs, amp: amp})
	c.mu.Unlock()
	c.Add("progress")
}

func (c *recordingCallback) OnError(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.Add("error")
}

func (c *recordingCallback) ticks() []progressTick {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]progressTick(nil), c.progress...)
}

func (c *recordingCallback) lastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.errs) == 0 {
		return nil
	}
	return c.errs[len(c.errs)-1]
}

// lifecycle drops progress ticks from the event log.
func (c *recordingCallback) lifecycle() []string {
	var out []string
	for _, e := range c.Events() {
		if e != "progress" {
			out = append(out, e)
		}
	}
	return out
}

func pcmBlock(samples []int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
