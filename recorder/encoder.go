// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Encoder compresses interleaved PCM16 into an output file.
type Encoder interface {
	Start() error
	Write(p []byte) (int, error)
	// CanPause reports whether the output survives a gap in the input.
	// Without it pausing a recording ends it.
	CanPause() bool
	// Close flushes and finalizes the output.
	Close() error
}

// EncoderFactory builds an unstarted Encoder for one recording.
type EncoderFactory func(path string, channels, sampleRate, bitrate int) (Encoder, error)

// encoderStopTimeout is how long ffmpeg gets to finalize after SIGINT.
const encoderStopTimeout = 5 * time.Second

// FFmpegEncoder pipes PCM into an ffmpeg process that writes AAC in an MP4
// container.
type FFmpegEncoder struct {
	bin  string
	args []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

// NewFFmpegEncoder returns an encoder for path. An empty bin means "ffmpeg"
// from PATH.
func NewFFmpegEncoder(bin, path string, channels, sampleRate, bitrate int) *FFmpegEncoder {
	if bin == "" {
		bin = "ffmpeg"
	}

	return &FFmpegEncoder{bin: bin, args: encoderArgs(path, channels, sampleRate, bitrate)}
}

// FFmpegEncoderFactory binds the ffmpeg binary into an EncoderFactory.
func FFmpegEncoderFactory(bin string) EncoderFactory {
	if bin == "" {
		bin = "ffmpeg"
	}

	return func(path string, channels, sampleRate, bitrate int) (Encoder, error) {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		return NewFFmpegEncoder(bin, path, channels, sampleRate, bitrate), nil
	}
}

func encoderArgs(path string, channels, sampleRate, bitrate int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
		"-c:a", "aac",
		"-b:a", strconv.Itoa(bitrate),
		"-movflags", "+faststart",
		"-f", "mp4",
		path,
	}
}

func (e *FFmpegEncoder) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd := exec.Command(e.bin, e.args...)
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e.cmd = cmd
	e.stdin = stdin

	return nil
}

func (e *FFmpegEncoder) Write(p []byte) (int, error) {
	if e.stdin == nil {
		return 0, io.ErrClosedPipe
	}

	return e.stdin.Write(p)
}

func (e *FFmpegEncoder) CanPause() bool { return false }

// Close ends the input, interrupts ffmpeg so it writes the trailer, and kills
// it when it does not exit in time.
func (e *FFmpegEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil
	}
	cmd := e.cmd
	e.cmd = nil

	_ = e.stdin.Close()
	if err := cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		_ = cmd.Process.Kill()
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil && !interrupted(err) {
			return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(e.stderr.String()))
		}
		return nil
	case <-time.After(encoderStopTimeout):
		_ = cmd.Process.Kill()
		<-done
		return nil
	}
}

// interrupted reports an exit caused by the stop signal.
func interrupted(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if exitErr.ExitCode() == 255 {
		return true
	}

	state := exitErr.ProcessState.String()
	return state == "signal: interrupt" || state == "signal: killed"
}
