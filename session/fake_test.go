// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ik5/audwave/decoder"
	"github.com/ik5/audwave/internal/audiotest"
	"github.com/ik5/audwave/recorder"
	"github.com/ik5/audwave/store"
)

// fakeBackend follows the recorder state table and fires callbacks
// synchronously.
type fakeBackend struct {
	mu         sync.Mutex
	state      recorder.State
	cb         recorder.Callback
	path       string
	prepares   int
	prepareErr error
	noPause    bool
}

func (b *fakeBackend) SetCallback(cb recorder.Callback) {
	b.mu.Lock()
	b.cb = cb
	b.mu.Unlock()
}

func (b *fakeBackend) transition(from []recorder.State, to recorder.State) (recorder.Callback, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range from {
		if b.state == s {
			b.state = to
			return b.cb, true
		}
	}
	return b.cb, false
}

func (b *fakeBackend) Prepare(path string, _, _, _ int) error {
	b.mu.Lock()
	b.prepares++
	err := b.prepareErr
	b.path = path
	b.mu.Unlock()

	if err != nil {
		b.cb.OnError(err)
		return err
	}

	cb, _ := b.transition([]recorder.State{recorder.Unprepared, recorder.Stopped}, recorder.Prepared)
	cb.OnPrepareRecord()
	return nil
}

func (b *fakeBackend) Start() error {
	if cb, ok := b.transition([]recorder.State{recorder.Prepared, recorder.Paused}, recorder.Recording); ok {
		cb.OnStartRecord(b.path)
		return nil
	}
	return recorder.ErrIllegalState
}

func (b *fakeBackend) Resume() error {
	if cb, ok := b.transition([]recorder.State{recorder.Paused}, recorder.Recording); ok {
		cb.OnStartRecord(b.path)
		return nil
	}
	return recorder.ErrIllegalState
}

func (b *fakeBackend) Pause() error {
	if b.noPause {
		return b.Stop()
	}
	if cb, ok := b.transition([]recorder.State{recorder.Recording}, recorder.Paused); ok {
		cb.OnPauseRecord()
	}
	return nil
}

func (b *fakeBackend) Stop() error {
	if cb, ok := b.transition([]recorder.State{recorder.Recording, recorder.Paused}, recorder.Stopped); ok {
		cb.OnStopRecord(b.path)
		return nil
	}
	b.transition([]recorder.State{recorder.Prepared}, recorder.Stopped)
	return nil
}

func (b *fakeBackend) State() recorder.State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

func (b *fakeBackend) IsRecording() bool { return b.State().Active() }
func (b *fakeBackend) IsPaused() bool    { return b.State() == recorder.Paused }

func (b *fakeBackend) tick(ms int64, amp int) {
	b.mu.Lock()
	cb := b.cb
	b.mu.Unlock()

	cb.OnRecordProgress(ms, amp)
}

func (b *fakeBackend) fail(err error) {
	b.mu.Lock()
	cb := b.cb
	b.mu.Unlock()

	cb.OnError(err)
}

func (b *fakeBackend) prepareCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.prepares
}

// fakeStore keeps records in memory and fails the next N updates on request.
type fakeStore struct {
	mu          sync.Mutex
	records     map[int64]*store.Record
	failUpdates int
	updates     int
}

func newFakeStore(recs ...*store.Record) *fakeStore {
	s := &fakeStore{records: map[int64]*store.Record{}}
	for _, r := range recs {
		s.records[r.ID] = r.Clone()
	}
	return s
}

func (s *fakeStore) GetRecord(_ context.Context, id int64) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %d: %w", id, store.ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *fakeStore) UpdateRecord(_ context.Context, r *store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	if s.failUpdates > 0 {
		s.failUpdates--
		return audiotest.ErrInjected
	}
	if _, ok := s.records[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.records[r.ID] = r.Clone()
	return nil
}

func (s *fakeStore) InsertRecord(_ context.Context, r *store.Record) (*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := r.Clone()
	c.ID = int64(len(s.records) + 1)
	s.records[c.ID] = c
	return c.Clone(), nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updates
}

type fakeDecoder struct {
	mu    sync.Mutex
	gains []int
	err   error
	paths []string
}

func (d *fakeDecoder) Decode(_ context.Context, path string, l decoder.Listener) (decoder.Result, error) {
	d.mu.Lock()
	d.paths = append(d.paths, path)
	d.mu.Unlock()

	if d.err != nil {
		l.OnError(d.err)
		return decoder.Result{}, d.err
	}

	res := decoder.Result{DurationUs: 2_000_000, Channels: 1, SampleRate: 8000, Gains: d.gains}
	l.OnFinishDecode(res)
	return res, nil
}

func (d *fakeDecoder) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.paths)
}

func fixedProber(d time.Duration) DurationProber {
	return func(context.Context, string) (time.Duration, error) { return d, nil }
}

// watcher logs every event, prefixed with its name, into a shared log.
type watcher struct {
	name string
	log  *audiotest.EventLog
	// onStop runs inside OnStopRecord.
	onStop func()

	mu    sync.Mutex
	stops []*store.Record
	errs  []error
}

func newWatcher(log *audiotest.EventLog, name string) *watcher {
	return &watcher{name: name, log: log}
}

func (w *watcher) OnPrepareRecord()               { w.log.Add(w.name + "prepare") }
func (w *watcher) OnStartRecord(string)           { w.log.Add(w.name + "start") }
func (w *watcher) OnPauseRecord()                 { w.log.Add(w.name + "pause") }
func (w *watcher) OnRecordingProgress(int64, int) { w.log.Add(w.name + "progress") }
func (w *watcher) OnRecordProcessing()            { w.log.Add(w.name + "processing") }
func (w *watcher) OnRecordFinishProcessing()      { w.log.Add(w.name + "finish-processing") }

func (w *watcher) OnStopRecord(_ string, rec *store.Record) {
	if w.onStop != nil {
		w.onStop()
	}

	w.mu.Lock()
	w.stops = append(w.stops, rec)
	w.mu.Unlock()

	w.log.Add(w.name + "stop")
}

func (w *watcher) OnError(err error) {
	w.mu.Lock()
	w.errs = append(w.errs, err)
	w.mu.Unlock()

	w.log.Add(w.name + "error")
}

func (w *watcher) stopRecords() []*store.Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]*store.Record(nil), w.stops...)
}

func (w *watcher) errors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]error(nil), w.errs...)
}

// lifecycle drops progress ticks from the shared log.
func lifecycle(log *audiotest.EventLog) []string {
	var out []string
	for _, e := range log.Events() {
		if !strings.HasSuffix(e, "progress") {
			out = append(out, e)
		}
	}
	return out
}
