// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"io"
	"sync"
)

var errInjected = errors.New("codec exploded")

// fakeExtractor serves fixed packets.
type fakeExtractor struct {
	tracks  []Track
	packets [][]byte
	idx     int
	closed  bool
}

func pcmPackets(samples []int16, packetSize int) [][]byte {
	raw := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		raw = append(raw, byte(uint16(s)), byte(uint16(s)>>8))
	}

	var packets [][]byte
	for len(raw) > 0 {
		n := min(packetSize, len(raw))
		packets = append(packets, raw[:n])
		raw = raw[n:]
	}
	return packets
}

func (e *fakeExtractor) Tracks() []Track { return e.tracks }

func (e *fakeExtractor) SelectTrack(i int) error {
	if i < 0 || i >= len(e.tracks) {
		return ErrTrackIndex
	}
	e.idx = 0
	return nil
}

func (e *fakeExtractor) ReadSampleData(dst []byte) (int, error) {
	if e.idx >= len(e.packets) {
		return 0, io.EOF
	}
	p := e.packets[e.idx]
	if len(dst) < len(p) {
		return 0, ErrShortInput
	}
	return copy(dst, p), nil
}

func (e *fakeExtractor) SampleTime() int64 { return int64(e.idx) * 1000 }

func (e *fakeExtractor) Advance() bool {
	if e.idx < len(e.packets) {
		e.idx++
	}
	return e.idx < len(e.packets)
}

func (e *fakeExtractor) Close() error {
	e.closed = true
	return nil
}

// fakeCodec passes input bytes straight through as PCM. With failAfter set
// it reports errInjected on the queue call after that many inputs.
type fakeCodec struct {
	failAfter int
	bufSize   int

	inputs  chan *InputBuffer
	outputs chan *OutputBuffer
	errs    chan error

	mu       sync.Mutex
	queued   []int
	eos      bool
	released int
	stopped  bool
}

func newFakeCodec(failAfter int) *fakeCodec {
	return &fakeCodec{failAfter: failAfter, bufSize: 64 * 1024}
}

func (c *fakeCodec) Start(_ context.Context, _ Track) error {
	c.inputs = make(chan *InputBuffer, 2)
	c.outputs = make(chan *OutputBuffer, 1024)
	c.errs = make(chan error, 1)
	for range 2 {
		c.inputs <- &InputBuffer{Data: make([]byte, c.bufSize)}
	}
	return nil
}

func (c *fakeCodec) Inputs() <-chan *InputBuffer   { return c.inputs }
func (c *fakeCodec) Outputs() <-chan *OutputBuffer { return c.outputs }
func (c *fakeCodec) Errors() <-chan error          { return c.errs }

func (c *fakeCodec) Queue(in *InputBuffer) error {
	c.mu.Lock()
	c.queued = append(c.queued, in.Len)
	n := len(c.queued)
	if in.EOS {
		c.eos = true
	}
	c.mu.Unlock()

	if c.failAfter >= 0 && n > c.failAfter {
		select {
		case c.errs <- errInjected:
		default:
		}
		return nil
	}

	data := append([]byte(nil), in.Data[:in.Len]...)
	c.outputs <- &OutputBuffer{Data: data}
	if in.EOS {
		c.outputs <- &OutputBuffer{EOS: true}
	}

	in.reset()
	c.inputs <- in

	return nil
}

func (c *fakeCodec) Release(*OutputBuffer) {
	c.mu.Lock()
	c.released++
	c.mu.Unlock()
}

func (c *fakeCodec) Stop() error {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	return nil
}

func (c *fakeCodec) queuedLens() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.queued...)
}

// recordingListener captures every callback.
type recordingListener struct {
	mu       sync.Mutex
	starts   int
	finishes []Result
	errs     []error
	order    []string
}

func (l *recordingListener) OnStartDecode(int64, int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	l.order = append(l.order, "start")
}

func (l *recordingListener) OnFinishDecode(res Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finishes = append(l.finishes, res)
	l.order = append(l.order, "finish")
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
	l.order = append(l.order, "error")
}
