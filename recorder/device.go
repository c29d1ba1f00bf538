// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/gen2brain/malgo"
)

// Device is a source of interleaved little-endian PCM16 capture data.
// Read blocks until data is available and returns io.EOF once the device has
// been stopped.
type Device interface {
	Start() error
	Read(p []byte) (int, error)
	Stop() error
	Close() error
}

// DeviceFactory opens a capture device for the given layout.
type DeviceFactory func(channels, sampleRate int) (Device, error)

// frameQueueSize is how many driver callbacks may wait for the reader before
// new ones are dropped.
const frameQueueSize = 64

// MalgoDevice captures from the default input through miniaudio.
type MalgoDevice struct {
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	frames  chan []byte
	pending []byte

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewMalgoDevice initializes the default capture device as S16 with the
// requested channels and sample rate. Call Close when done.
func NewMalgoDevice(channels, sampleRate int) (*MalgoDevice, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}

	d := &MalgoDevice{
		ctx:     ctx,
		frames:  make(chan []byte, frameQueueSize),
		stopped: make(chan struct{}),
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: d.onData})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	d.dev = dev

	return d, nil
}

// onData runs on the driver thread and must not block.
func (d *MalgoDevice) onData(_, input []byte, _ uint32) {
	select {
	case d.frames <- slices.Clone(input):
	default:
	}
}

func (d *MalgoDevice) Start() error {
	if err := d.dev.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}

	return nil
}

func (d *MalgoDevice) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		select {
		case b := <-d.frames:
			d.pending = b
		case <-d.stopped:
			return 0, io.EOF
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]

	return n, nil
}

func (d *MalgoDevice) Stop() error {
	var err error
	d.stopOnce.Do(func() {
		err = d.dev.Stop()
		close(d.stopped)
	})
	if err != nil {
		return fmt.Errorf("stopping capture device: %w", err)
	}

	return nil
}

func (d *MalgoDevice) Close() error {
	_ = d.Stop()
	d.dev.Uninit()

	if err := d.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninitializing audio context: %w", err)
	}
	d.ctx.Free()

	return nil
}

func openMalgo(channels, sampleRate int) (Device, error) {
	return NewMalgoDevice(channels, sampleRate)
}
