// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const (
	inputBufferCount = 4
	inputBufferSize  = 64 * 1024
	outputQueueSize  = 8
)

// InputBuffer carries compressed bytes into a codec. Data[:Len] is valid.
type InputBuffer struct {
	Data   []byte
	Len    int
	TimeUs int64
	EOS    bool
}

func (b *InputBuffer) reset() {
	b.Len = 0
	b.TimeUs = 0
	b.EOS = false
}

// OutputBuffer carries decoded little-endian PCM16 bytes.
type OutputBuffer struct {
	Data []byte
	EOS  bool
}

// Codec is a decode unit driven through buffers. Inputs hands out empty
// buffers the caller fills and returns through Queue. Decoded data arrives
// on Outputs and every output must be given back with Release. A failure is
// reported once on Errors.
type Codec interface {
	Start(ctx context.Context, track Track) error
	Inputs() <-chan *InputBuffer
	Queue(in *InputBuffer) error
	Outputs() <-chan *OutputBuffer
	Release(out *OutputBuffer)
	Errors() <-chan error
	Stop() error
}

// pipeCodec implements the buffer protocol on top of a byte pipe. A feeder
// goroutine writes queued input into the pipe and a producer goroutine
// turns whatever comes out of it into output buffers.
type pipeCodec struct {
	inputs  chan *InputBuffer
	queued  chan *InputBuffer
	outputs chan *OutputBuffer
	errs    chan error
	free    sync.Pool

	ctx      context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	done     chan struct{}
	stopOnce sync.Once
}

func (c *pipeCodec) init(ctx context.Context) {
	c.inputs = make(chan *InputBuffer, inputBufferCount)
	c.queued = make(chan *InputBuffer, inputBufferCount)
	c.outputs = make(chan *OutputBuffer, outputQueueSize)
	c.errs = make(chan error, 1)
	c.done = make(chan struct{})

	for range inputBufferCount {
		c.inputs <- &InputBuffer{Data: make([]byte, inputBufferSize)}
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.group, c.ctx = errgroup.WithContext(ctx)
}

// run starts the two pumps and reports the first real failure on Errors.
func (c *pipeCodec) run(w io.WriteCloser, produce func(ctx context.Context) error) {
	c.group.Go(func() error { return c.feed(w) })
	c.group.Go(func() error { return produce(c.ctx) })

	go func() {
		defer close(c.done)

		err := c.group.Wait()
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		select {
		case c.errs <- err:
		default:
		}
	}()
}

func (c *pipeCodec) feed(w io.WriteCloser) error {
	defer w.Close()

	for {
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case in := <-c.queued:
			if in.Len > 0 {
				if _, err := w.Write(in.Data[:in.Len]); err != nil {
					// the producer stopped reading and reports its own outcome
					if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
						return nil
					}
					return fmt.Errorf("writing input: %w", err)
				}
			}

			eos := in.EOS
			in.reset()
			c.inputs <- in

			if eos {
				return nil
			}
		}
	}
}

// emit hands a PCM block to the consumer, blocking until it is taken.
func (c *pipeCodec) emit(ctx context.Context, pcm []byte, eos bool) error {
	out := &OutputBuffer{Data: pcm, EOS: eos}
	select {
	case c.outputs <- out:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// buffer returns an empty byte slice for the next output, reusing released
// ones.
func (c *pipeCodec) buffer() []byte {
	if b, ok := c.free.Get().(*[]byte); ok {
		return (*b)[:0]
	}
	return make([]byte, 0, inputBufferSize)
}

func (c *pipeCodec) Inputs() <-chan *InputBuffer   { return c.inputs }
func (c *pipeCodec) Outputs() <-chan *OutputBuffer { return c.outputs }
func (c *pipeCodec) Errors() <-chan error          { return c.errs }

func (c *pipeCodec) Queue(in *InputBuffer) error {
	if c.ctx == nil {
		return ErrNotStarted
	}

	select {
	case c.queued <- in:
		return nil
	case <-c.ctx.Done():
		return ErrCodecStopped
	}
}

func (c *pipeCodec) Release(out *OutputBuffer) {
	if out == nil || out.Data == nil {
		return
	}
	data := out.Data
	out.Data = nil
	c.free.Put(&data)
}

func (c *pipeCodec) Stop() error {
	if c.cancel == nil {
		return nil
	}

	c.stopOnce.Do(func() {
		c.cancel()
		<-c.done
	})

	return nil
}
