// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegCodec decodes any container ffmpeg understands by piping the file
// through an ffmpeg process that writes raw s16le.
type FFmpegCodec struct {
	pipeCodec
	path string
}

// NewFFmpegCodec uses the ffmpeg binary at path, or the one on PATH when
// path is empty.
func NewFFmpegCodec(path string) *FFmpegCodec {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegCodec{path: path}
}

func ffmpegArgs(track Track) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-map", "0:a:" + strconv.Itoa(track.StreamIndex),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"pipe:1",
	}
}

func (c *FFmpegCodec) Start(ctx context.Context, track Track) error {
	c.init(ctx)

	cmd := exec.CommandContext(c.ctx, c.path, ffmpegArgs(track)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		c.cancel()
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.cancel()
		return fmt.Errorf("ffmpeg stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		c.cancel()
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	c.run(stdin, func(ctx context.Context) error {
		readErr := c.pump(ctx, stdout)

		if err := cmd.Wait(); err != nil && readErr == nil && ctx.Err() == nil {
			return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		if readErr != nil {
			return readErr
		}

		return c.emit(ctx, nil, true)
	})

	return nil
}

func (c *FFmpegCodec) pump(ctx context.Context, r io.Reader) error {
	for {
		buf := c.buffer()
		n, err := r.Read(buf[:cap(buf)])
		if n > 0 {
			if emitErr := c.emit(ctx, buf[:n], false); emitErr != nil {
				return emitErr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading ffmpeg output: %w", err)
		}
	}
}
