// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/utils"
	"github.com/ik5/audwave/waveform"
)

// FeedMode selects how extractor packets are packed into input buffers.
type FeedMode int

const (
	// Effective packs as many consecutive packets as fit into one buffer.
	Effective FeedMode = iota
	// Simple queues exactly one packet per buffer.
	Simple
)

func (m FeedMode) String() string {
	if m == Simple {
		return "simple"
	}
	return "effective"
}

// gainAccumulator folds PCM16 frames into one gain per window: the square
// root of the largest absolute channel average seen in the window.
type gainAccumulator struct {
	channels int
	window   int

	carry    []byte
	frameSum int
	inFrame  int
	frames   int
	peak     int
	gains    []int
}

func newGainAccumulator(channels, window int) *gainAccumulator {
	return &gainAccumulator{
		channels: max(channels, 1),
		window:   max(window, 1),
		carry:    make([]byte, 0, 2),
	}
}

func (a *gainAccumulator) write(pcm []byte) {
	if len(a.carry) == 1 && len(pcm) > 0 {
		a.carry = append(a.carry, pcm[0])
		a.sample(utils.Int16At(a.carry, 0))
		a.carry = a.carry[:0]
		pcm = pcm[1:]
	}

	n := len(pcm) / 2
	for i := range n {
		a.sample(utils.Int16At(pcm, 2*i))
	}

	if len(pcm)%2 == 1 {
		a.carry = append(a.carry, pcm[len(pcm)-1])
	}
}

func (a *gainAccumulator) sample(s int16) {
	a.frameSum += int(s)
	a.inFrame++
	if a.inFrame < a.channels {
		return
	}

	avg := a.frameSum / a.channels
	if avg < 0 {
		avg = -avg
	}
	a.peak = max(a.peak, avg)
	a.frameSum = 0
	a.inFrame = 0
	a.frames++

	if a.frames == a.window {
		a.gains = append(a.gains, int(math.Sqrt(float64(a.peak))))
		a.peak = 0
		a.frames = 0
	}
}

// job is one attempt at decoding a file with a fresh extractor and codec.
// track is already selected on ex.
type job struct {
	stateMachine

	ex         Extractor
	track      Track
	codec      Codec
	mode       FeedMode
	policy     waveform.Policy
	cancelable bool
	log        logging.Logger

	onStart   func(Track)
	maxPacket int
}

// errRetry marks failures that happened while the codec was running.
type errRetry struct{ err error }

func (e *errRetry) Error() string { return e.err.Error() }
func (e *errRetry) Unwrap() error { return e.err }

func (j *job) fail(err error) error {
	_ = j.to(Failed)
	return err
}

func (j *job) run(ctx context.Context) (Result, error) {
	defer j.ex.Close()

	track := j.track
	if err := j.to(TrackSelected); err != nil {
		return Result{}, j.fail(err)
	}

	window := j.policy.FrameWindow(track.SampleRate, track.DurationUs)
	j.log.Debugf("track %s: %d Hz, %d ch, %d us, window %d frames, %s feeding",
		track.MIME, track.SampleRate, track.Channels, track.DurationUs, window, j.mode)

	j.onStart(track)

	codecCtx := ctx
	if !j.cancelable {
		codecCtx = context.WithoutCancel(ctx)
	}
	if err := j.codec.Start(codecCtx, track); err != nil {
		return Result{}, j.fail(fmt.Errorf("starting codec: %w", err))
	}
	defer j.codec.Stop()

	if err := j.to(Decoding); err != nil {
		return Result{}, j.fail(err)
	}

	acc := newGainAccumulator(track.Channels, window)

	inputs := j.codec.Inputs()
	var cancelled <-chan struct{}
	if j.cancelable {
		cancelled = ctx.Done()
	}

	for {
		if j.cancelable && ctx.Err() != nil {
			return Result{}, j.fail(ctx.Err())
		}

		select {
		case in := <-inputs:
			eos, err := j.feed(in)
			if err != nil {
				return Result{}, j.fail(&errRetry{err})
			}
			if eos {
				inputs = nil
			}

		case out := <-j.codec.Outputs():
			acc.write(out.Data)
			eos := out.EOS
			j.codec.Release(out)

			if eos {
				if err := j.to(Finished); err != nil {
					return Result{}, j.fail(err)
				}
				return Result{
					DurationUs: track.DurationUs,
					Channels:   track.Channels,
					SampleRate: track.SampleRate,
					Gains:      acc.gains,
				}, nil
			}

		case err := <-j.codec.Errors():
			return Result{}, j.fail(&errRetry{err})

		case <-cancelled:
			return Result{}, j.fail(ctx.Err())
		}
	}
}

// feed fills in from the extractor, queues it and reports whether it was
// the end of stream.
func (j *job) feed(in *InputBuffer) (bool, error) {
	var err error
	if j.mode == Effective {
		err = j.fillEffective(in)
	} else {
		err = j.fillSimple(in)
	}
	if err != nil {
		return false, err
	}

	eos := in.EOS
	if err := j.codec.Queue(in); err != nil {
		return false, fmt.Errorf("queueing input: %w", err)
	}

	return eos, nil
}

func (j *job) fillEffective(in *InputBuffer) error {
	var (
		total    int
		advanced bool
		timeUs   int64
	)

	for {
		n, err := j.ex.ReadSampleData(in.Data[total:])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading packet: %w", err)
		}

		total += n
		timeUs = j.ex.SampleTime()
		advanced = j.ex.Advance()
		j.maxPacket = max(j.maxPacket, n)

		if total >= j.maxPacket*5 || !advanced || len(in.Data)-total <= j.maxPacket*3 {
			break
		}
	}

	in.Len = total
	in.TimeUs = timeUs
	in.EOS = !advanced

	return nil
}

func (j *job) fillSimple(in *InputBuffer) error {
	n, err := j.ex.ReadSampleData(in.Data)
	if errors.Is(err, io.EOF) {
		in.Len = 0
		in.EOS = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading packet: %w", err)
	}

	in.Len = n
	in.TimeUs = j.ex.SampleTime()
	j.ex.Advance()

	return nil
}
