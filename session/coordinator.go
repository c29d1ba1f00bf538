// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/formats"
	"github.com/ik5/audwave/internal/logging"
	"github.com/ik5/audwave/internal/queue"
	"github.com/ik5/audwave/recorder"
	"github.com/ik5/audwave/store"
	"github.com/ik5/audwave/waveform"
)

// Decoder produces the file accurate gain series of a finished recording.
type Decoder interface {
	Decode(ctx context.Context, path string, l decoder.Listener) (decoder.Result, error)
}

// liveBufferSize covers ten minutes of progress ticks before growing.
const liveBufferSize = 15000

// session is the state of one prepare..stop cycle.
type session struct {
	id       uuid.UUID
	path     string
	recordID int64
	log      logging.Logger
}

// Coordinator owns the single recording session of a backend. It fans
// backend events out to observers, saves the result when a recording stops
// and replaces the live envelope with a decoded one afterwards.
type Coordinator struct {
	backend recorder.Backend
	store   store.Store
	dec     Decoder
	policy  waveform.Policy
	queues  *queue.Set
	ownQ    bool
	probe   DurationProber
	log     logging.Logger

	mu        sync.Mutex
	observers []Observer
	active    *session

	elapsed    atomic.Int64
	amps       *waveform.AmplitudeBuffer
	processing atomic.Bool
}

type Option func(*Coordinator)

func WithPolicy(p waveform.Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithQueues shares q with the caller, who then closes it.
func WithQueues(q *queue.Set) Option {
	return func(c *Coordinator) { c.queues = q }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func WithDurationProber(p DurationProber) Option {
	return func(c *Coordinator) { c.probe = p }
}

// New takes over backend's callback.
func New(backend recorder.Backend, st store.Store, dec Decoder, opts ...Option) *Coordinator {
	c := &Coordinator{
		backend: backend,
		store:   st,
		dec:     dec,
		policy:  waveform.DefaultPolicy(),
		probe:   RegistryProber(formats.Default()),
		log:     logging.Nop(),
		amps:    waveform.NewAmplitudeBuffer(liveBufferSize),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.queues == nil {
		c.queues = queue.NewSet()
		c.ownQ = true
	}

	backend.SetCallback(backendEvents{c})

	return c
}

// Close waits for pending saves and decodes when the coordinator owns its
// queues.
func (c *Coordinator) Close() {
	if c.ownQ {
		c.queues.Close()
	}
}

func (c *Coordinator) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.observers, o) {
		c.observers = append(c.observers, o)
	}
}

func (c *Coordinator) RemoveObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers = slices.DeleteFunc(c.observers, func(x Observer) bool { return x == o })
}

func (c *Coordinator) each(fn func(Observer)) {
	c.mu.Lock()
	obs := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, o := range obs {
		fn(o)
	}
}

func (c *Coordinator) eachReverse(fn func(Observer)) {
	c.mu.Lock()
	obs := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, o := range slices.Backward(obs) {
		fn(o)
	}
}

func (c *Coordinator) emitError(err error) {
	c.each(func(o Observer) { o.OnError(err) })
}

func (c *Coordinator) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.active
}

// StartRecording starts a session on path, which must already exist, for
// record recordID. With a session already running it toggles between
// pause and resume instead.
func (c *Coordinator) StartRecording(path string, channels, sampleRate, bitrate int, recordID int64) error {
	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		switch {
		case c.backend.IsPaused():
			return c.backend.Resume()
		case c.backend.IsRecording():
			return c.backend.Pause()
		}
		return ErrBusy
	}

	s := &session{id: uuid.New(), path: path, recordID: recordID}
	s.log = c.log.With("session", s.id.String())
	c.active = s
	c.mu.Unlock()

	s.log.Infof("session: recording %s (record %d)", path, recordID)

	if err := c.backend.Prepare(path, channels, sampleRate, bitrate); err != nil {
		c.finish(s)
		return err
	}

	if err := c.backend.Start(); err != nil {
		_ = c.backend.Stop()
		c.finish(s)
		return err
	}

	return nil
}

// PauseRecording pauses the running session, if any.
func (c *Coordinator) PauseRecording() error {
	if c.current() == nil || !c.backend.IsRecording() || c.backend.IsPaused() {
		return nil
	}

	return c.backend.Pause()
}

// ResumeRecording resumes the paused session, if any.
func (c *Coordinator) ResumeRecording() error {
	if c.current() == nil || !c.backend.IsPaused() {
		return nil
	}

	return c.backend.Resume()
}

// StopRecording stops the session, if any. Saving continues on the
// recording queue.
func (c *Coordinator) StopRecording() error {
	if c.current() == nil {
		return nil
	}

	return c.backend.Stop()
}

func (c *Coordinator) finish(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == s {
		c.active = nil
	}
}

// IsActive reports whether a session exists, including one being saved.
func (c *Coordinator) IsActive() bool    { return c.current() != nil }
func (c *Coordinator) IsRecording() bool { return c.current() != nil && c.backend.IsRecording() }
func (c *Coordinator) IsPaused() bool    { return c.current() != nil && c.backend.IsPaused() }

// IsProcessing is true while a finished recording is being decoded.
func (c *Coordinator) IsProcessing() bool { return c.processing.Load() }

// Elapsed is the last reported progress of the session in milliseconds.
func (c *Coordinator) Elapsed() int64 { return c.elapsed.Load() }

// Amplitudes returns the live amplitudes collected so far.
func (c *Coordinator) Amplitudes() []int { return c.amps.Values() }

// save runs on the recording queue once the backend stopped.
func (c *Coordinator) save(s *session) {
	ctx := context.Background()

	durationMs := c.elapsed.Load()
	if d, err := c.probe(ctx, s.path); err != nil {
		s.log.Warnf("session: probing %s: %v, keeping %d ms", s.path, err, durationMs)
	} else {
		durationMs = d.Milliseconds()
	}

	amps := c.policy.Downsample(c.amps.Values(), durationMs)

	var (
		event *store.Record
		saved *store.Record
		fail  error
	)

	rec, err := c.store.GetRecord(ctx, s.recordID)
	if err != nil {
		fail = fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	} else {
		event = rec

		updated := rec.Clone()
		updated.DurationMs = durationMs
		updated.Amps = amps
		if fi, err := os.Stat(s.path); err == nil {
			updated.Size = fi.Size()
		}

		if err := c.update(ctx, s.log, updated); err != nil {
			fail = err
		} else {
			event = updated
			saved = updated
		}
	}

	c.eachReverse(func(o Observer) { o.OnStopRecord(s.path, event) })

	if fail != nil {
		s.log.Errorf("session: %v", fail)
		c.emitError(fail)
	}

	c.elapsed.Store(0)
	c.amps.Reset()
	c.finish(s)

	s.log.Infof("session: stopped %s, %d ms, %d amplitudes", s.path, durationMs, len(amps))

	if saved != nil {
		if err := c.decodeWaveform(s.log, saved); err != nil {
			s.log.Warnf("session: skipping decode of %s: %v", s.path, err)
		}
	}
}

// DecodeRecordWaveform queues a decode of rec's file on the processing
// queue. The decoded gains replace rec's stored waveform.
func (c *Coordinator) DecodeRecordWaveform(rec *store.Record) error {
	return c.decodeWaveform(c.log.With("record", rec.ID), rec.Clone())
}

func (c *Coordinator) decodeWaveform(log logging.Logger, rec *store.Record) error {
	if rec.Path == "" {
		return fmt.Errorf("record %d: %w", rec.ID, ErrNoPath)
	}

	return c.queues.Processing.Submit(func() { c.redecode(log, rec) })
}

// update stores r, trying once more when the first attempt fails.
func (c *Coordinator) update(ctx context.Context, log logging.Logger, r *store.Record) error {
	err := c.store.UpdateRecord(ctx, r)
	if err == nil {
		return nil
	}

	log.Warnf("session: updating record %d: %v, retrying", r.ID, err)

	if err := c.store.UpdateRecord(ctx, r); err != nil {
		return fmt.Errorf("%w: record %d: %w", ErrPersistenceFailed, r.ID, err)
	}

	return nil
}

// redecode runs on the processing queue and replaces the live envelope
// with the decoded one.
func (c *Coordinator) redecode(log logging.Logger, rec *store.Record) {
	c.processing.Store(true)
	c.each(func(o Observer) { o.OnRecordProcessing() })

	defer func() {
		c.processing.Store(false)
		c.each(func(o Observer) { o.OnRecordFinishProcessing() })
	}()

	ctx := context.Background()

	res, err := c.dec.Decode(ctx, rec.Path, decoder.ListenerFuncs{})
	if err != nil {
		log.Errorf("session: decoding %s: %v", rec.Path, err)
		c.emitError(err)
		return
	}

	updated := rec.Clone()
	updated.Amps = res.Gains
	updated.WaveformProcessed = true
	if updated.DurationMs == 0 {
		updated.DurationMs = res.DurationUs / 1000
	}
	if updated.SampleRate == 0 {
		updated.SampleRate = res.SampleRate
	}
	if updated.Channels == 0 {
		updated.Channels = res.Channels
	}

	if err := c.update(ctx, log, updated); err != nil {
		log.Errorf("session: %v", err)
		c.emitError(err)
		return
	}

	log.Debugf("session: stored %d decoded gains for record %d", len(res.Gains), rec.ID)
}

// backendEvents adapts the coordinator to recorder.Callback.
type backendEvents struct {
	c *Coordinator
}

func (e backendEvents) OnPrepareRecord() {
	e.c.each(func(o Observer) { o.OnPrepareRecord() })
}

func (e backendEvents) OnStartRecord(path string) {
	e.c.each(func(o Observer) { o.OnStartRecord(path) })
}

func (e backendEvents) OnPauseRecord() {
	e.c.each(func(o Observer) { o.OnPauseRecord() })
}

func (e backendEvents) OnRecordProgress(elapsedMs int64, amp int) {
	if e.c.current() == nil {
		return
	}

	e.c.elapsed.Store(elapsedMs)
	e.c.amps.Append(amp)
	e.c.each(func(o Observer) { o.OnRecordingProgress(elapsedMs, amp) })
}

func (e backendEvents) OnStopRecord(path string) {
	s := e.c.current()
	if s == nil {
		return
	}

	if err := e.c.queues.Recording.Submit(func() { e.c.save(s) }); err != nil {
		s.log.Errorf("session: cannot save %s: %v", path, err)
		e.c.finish(s)
	}
}

func (e backendEvents) OnError(err error) {
	e.c.emitError(err)

	if errors.Is(err, recorder.ErrRecordingError) {
		_ = e.c.queues.Recording.Submit(func() { _ = e.c.backend.Stop() })
	}
}
