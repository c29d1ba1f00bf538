// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// NativeCodec decodes with a registry decoder. Queued input is streamed
// through an io.Pipe into audio.Decoder.Decode and the float samples it
// yields come back as PCM16.
type NativeCodec struct {
	pipeCodec
	dec audio.Decoder
}

func NewNativeCodec(dec audio.Decoder) *NativeCodec {
	return &NativeCodec{dec: dec}
}

func (c *NativeCodec) Start(ctx context.Context, _ Track) error {
	if c.dec == nil {
		return ErrNoDecoder
	}

	c.init(ctx)
	pr, pw := io.Pipe()

	c.run(pw, func(ctx context.Context) error {
		defer pr.Close()

		stop := context.AfterFunc(ctx, func() { pr.CloseWithError(ctx.Err()) })
		defer stop()

		return c.decode(ctx, pr)
	})

	return nil
}

func (c *NativeCodec) decode(ctx context.Context, r io.Reader) error {
	src, err := c.dec.Decode(r)
	if err != nil {
		return fmt.Errorf("native decode: %w", err)
	}
	defer src.Close()

	ch := max(src.Channels(), 1)
	size := max(src.BufSize(), 4096)
	samples := make([]float32, size-size%ch)

	for {
		n, err := src.ReadSamples(samples)
		if n > 0 {
			pcm := utils.AppendPCM16LE(c.buffer(), samples[:n])
			if emitErr := c.emit(ctx, pcm, false); emitErr != nil {
				return emitErr
			}
		}

		if errors.Is(err, io.EOF) {
			return c.emit(ctx, nil, true)
		}
		if err != nil {
			return fmt.Errorf("native decode: %w", err)
		}
	}
}
