// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/waveform"
)

// Backend captures one recording at a time into a caller supplied file.
type Backend interface {
	Prepare(path string, channels, sampleRate, bitrate int) error
	Start() error
	Pause() error
	Resume() error
	Stop() error
	State() State
	// IsRecording is true while recording or paused.
	IsRecording() bool
	IsPaused() bool
	SetCallback(cb Callback)
}

// DefaultBlockSize is the capture read size in bytes.
const DefaultBlockSize = 4096

// Recorder is the Backend shared by the raw PCM and compressed variants. The
// variants differ only in where captured blocks go.
type Recorder struct {
	// op serializes lifecycle operations together with their callbacks.
	op sync.Mutex

	mu    sync.Mutex
	state State
	cb    Callback

	sink      sink
	newDevice DeviceFactory
	check     FileChecker
	interval  time.Duration
	blockSize int
	log       logging.Logger

	path       string
	dev        Device
	timer      *progressTimer
	captureEnd chan struct{}
}

type Option func(*Recorder)

func WithLogger(l logging.Logger) Option {
	return func(r *Recorder) { r.log = l }
}

func WithDeviceFactory(f DeviceFactory) Option {
	return func(r *Recorder) { r.newDevice = f }
}

func WithFileChecker(f FileChecker) Option {
	return func(r *Recorder) { r.check = f }
}

// WithInterval sets the progress tick period.
func WithInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBlockSize(n int) Option {
	return func(r *Recorder) {
		if n > 1 {
			r.blockSize = n &^ 1
		}
	}
}

// NewPCM returns a backend that writes a 16-bit PCM WAV file.
func NewPCM(opts ...Option) *Recorder {
	return newRecorder(&wavSink{}, opts)
}

// NewCompressed returns a backend that pipes capture through an Encoder built
// by newEncoder. A nil factory uses ffmpeg from PATH.
func NewCompressed(newEncoder EncoderFactory, opts ...Option) *Recorder {
	if newEncoder == nil {
		newEncoder = FFmpegEncoderFactory("")
	}

	return newRecorder(&encoderSink{newEncoder: newEncoder}, opts)
}

func newRecorder(s sink, opts []Option) *Recorder {
	r := &Recorder{
		cb:        CallbackFuncs{},
		sink:      s,
		newDevice: openMalgo,
		check:     CheckOutputFile,
		interval:  waveform.VisualizationInterval,
		blockSize: DefaultBlockSize,
		log:       logging.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Recorder) SetCallback(cb Callback) {
	if cb == nil {
		cb = CallbackFuncs{}
	}

	r.mu.Lock()
	r.cb = cb
	r.mu.Unlock()
}

func (r *Recorder) callback() Callback {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cb
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

func (r *Recorder) IsRecording() bool { return r.State().Active() }
func (r *Recorder) IsPaused() bool    { return r.State() == Paused }

func (r *Recorder) setState(next State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !CanTransition(r.state, next) {
		r.log.Warnf("recorder: unexpected transition %s -> %s", r.state, next)
	}
	r.state = next
}

// Prepare validates path and opens the capture device. On failure the
// callback gets the same error that is returned and the state is unchanged.
func (r *Recorder) Prepare(path string, channels, sampleRate, bitrate int) error {
	r.op.Lock()
	defer r.op.Unlock()

	if s := r.State(); s != Unprepared && s != Stopped {
		return fmt.Errorf("%w: prepare while %s", ErrIllegalState, s)
	}

	if err := r.prepare(path, channels, sampleRate, bitrate); err != nil {
		r.log.Errorf("recorder: prepare %s: %v", path, err)
		r.callback().OnError(err)
		return err
	}

	r.setState(Prepared)
	r.log.Debugf("recorder: prepared %s (%d ch, %d Hz, %d bps)", path, channels, sampleRate, bitrate)
	r.callback().OnPrepareRecord()

	return nil
}

func (r *Recorder) prepare(path string, channels, sampleRate, bitrate int) error {
	if err := r.check(path); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOutputFile, err)
	}

	if channels < 1 || channels > 2 || sampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrInitializationFailed, channels, sampleRate)
	}

	if err := r.sink.open(path, channels, sampleRate, bitrate); err != nil {
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}

	dev, err := r.newDevice(channels, sampleRate)
	if err != nil {
		_ = r.sink.finish()
		return fmt.Errorf("%w: %w", ErrInitializationFailed, err)
	}

	r.path = path
	r.dev = dev
	r.timer = newProgressTimer(r.interval, r.sink.amplitude, func(ms int64, amp int) {
		r.callback().OnRecordProgress(ms, amp)
	})

	return nil
}

// Start begins capture from Prepared, or resumes from Paused.
func (r *Recorder) Start() error {
	r.op.Lock()
	defer r.op.Unlock()

	switch s := r.State(); s {
	case Paused:
		r.resume()
		return nil
	case Prepared:
	default:
		return fmt.Errorf("%w: start while %s", ErrIllegalState, s)
	}

	if err := r.begin(); err != nil {
		err = fmt.Errorf("%w: %w", ErrInitializationFailed, err)
		r.log.Errorf("recorder: start %s: %v", r.path, err)
		r.callback().OnError(err)
		return err
	}

	r.setState(Recording)

	done := make(chan struct{})
	r.captureEnd = done
	go r.capture(r.dev, done)

	r.timer.start()
	r.callback().OnStartRecord(r.path)

	return nil
}

func (r *Recorder) begin() error {
	if err := r.sink.begin(); err != nil {
		return err
	}

	return r.dev.Start()
}

// Resume continues a paused recording. Elapsed time carries on.
func (r *Recorder) Resume() error {
	r.op.Lock()
	defer r.op.Unlock()

	if s := r.State(); s != Paused {
		return fmt.Errorf("%w: resume while %s", ErrIllegalState, s)
	}
	r.resume()

	return nil
}

func (r *Recorder) resume() {
	r.setState(Recording)
	r.timer.start()
	r.callback().OnStartRecord(r.path)
}

// Pause holds a running recording. Captured data is dropped until it
// resumes. When the sink cannot pause the recording is stopped instead.
func (r *Recorder) Pause() error {
	r.op.Lock()
	defer r.op.Unlock()

	if r.State() != Recording {
		return nil
	}

	if !r.sink.canPause() {
		r.log.Debugf("recorder: no native pause, stopping %s", r.path)
		r.stop()
		return nil
	}

	r.setState(Paused)
	r.timer.pause()
	r.callback().OnPauseRecord()

	return nil
}

// Stop ends the recording and releases the device. It is a no-op unless a
// recording is prepared or running.
func (r *Recorder) Stop() error {
	r.op.Lock()
	defer r.op.Unlock()

	r.stop()

	return nil
}

func (r *Recorder) stop() {
	switch r.State() {
	case Prepared:
		r.setState(Stopped)
		r.release()
		return
	case Recording, Paused:
	default:
		return
	}

	r.setState(Stopped)
	r.timer.pause()

	if err := r.dev.Stop(); err != nil {
		r.log.Warnf("recorder: %v", err)
	}
	<-r.captureEnd
	r.captureEnd = nil

	r.release()
	r.log.Debugf("recorder: stopped %s after %d ms", r.path, r.timer.elapsedMs())
	r.callback().OnStopRecord(r.path)
}

func (r *Recorder) release() {
	if err := r.sink.finish(); err != nil {
		r.log.Warnf("recorder: finalizing %s: %v", r.path, err)
	}

	if r.dev != nil {
		if err := r.dev.Close(); err != nil {
			r.log.Warnf("recorder: %v", err)
		}
		r.dev = nil
	}
}

// capture moves device blocks into the sink until the device reports EOF.
// Blocks read while paused are dropped.
func (r *Recorder) capture(dev Device, done chan struct{}) {
	defer close(done)

	buf := make([]byte, r.blockSize)
	for {
		n, err := dev.Read(buf)
		if n > 0 && r.State() != Paused {
			if werr := r.sink.write(buf[:n]); werr != nil {
				go r.fail(done, fmt.Errorf("%w: %w", ErrRecordingError, werr))
				return
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				go r.fail(done, fmt.Errorf("%w: %w", ErrRecordingError, err))
			}
			return
		}
	}
}

// fail reports a capture failure and stops the recording it broke, unless
// that recording already ended.
func (r *Recorder) fail(done chan struct{}, err error) {
	r.op.Lock()
	defer r.op.Unlock()

	r.log.Errorf("recorder: %s: %v", r.path, err)
	r.callback().OnError(err)

	if r.captureEnd == done {
		r.stop()
	}
}
