// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("queue closed")

// Queue runs submitted tasks one at a time, in submission order, on its own
// goroutine. Submit never blocks.
type Queue struct {
	name string

	mu      sync.Mutex
	cond    *sync.Cond
	tasks   []func()
	closed  bool
	stopped chan struct{}
}

func New(name string) *Queue {
	q := &Queue{
		name:    name,
		stopped: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.loop()

	return q
}

func (q *Queue) Name() string { return q.name }

// Submit appends task to the queue.
func (q *Queue) Submit(task func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()

	return nil
}

// Len reports how many tasks are waiting, not counting a running one.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Close rejects new tasks, waits for the pending ones to run and stops the
// goroutine. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.stopped
}

func (q *Queue) loop() {
	defer close(q.stopped)

	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}

		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}

// Set is the group of named queues the application runs on.
type Set struct {
	Recording  *Queue
	Processing *Queue
	Import     *Queue
	Loading    *Queue
}

func NewSet() *Set {
	return &Set{
		Recording:  New("recording"),
		Processing: New("processing"),
		Import:     New("import"),
		Loading:    New("loading"),
	}
}

// Close drains and stops every queue. The recording and import queues feed
// the processing queue, so they close before it.
func (s *Set) Close() {
	for _, q := range []*Queue{s.Recording, s.Import, s.Processing, s.Loading} {
		if q != nil {
			q.Close()
		}
	}
}
