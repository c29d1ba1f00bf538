// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := New("test")
	assert.Equal(t, "test", q.Name())

	var (
		mu    sync.Mutex
		order []int
	)
	for i := range 100 {
		require.NoError(t, q.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	q.Close()

	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestQueue_OneAtATime(t *testing.T) {
	t.Parallel()

	q := New("serial")
	defer q.Close()

	var running, peak atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		require.NoError(t, q.Submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		}))
	}

	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())
}

func TestQueue_SubmitAfterClose(t *testing.T) {
	t.Parallel()

	q := New("closed")
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Submit(func() {}), ErrClosed)
}

func TestQueue_BlockingTaskDoesNotBlockSubmit(t *testing.T) {
	t.Parallel()

	q := New("blocking")
	started := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, q.Submit(func() {
		close(started)
		<-release
	}))
	<-started
	for range 10 {
		require.NoError(t, q.Submit(func() {}))
	}
	assert.Equal(t, 10, q.Len())

	close(release)
	q.Close()
	assert.Equal(t, 0, q.Len())
}

func TestSet(t *testing.T) {
	t.Parallel()

	s := NewSet()
	assert.Equal(t, "recording", s.Recording.Name())
	assert.Equal(t, "processing", s.Processing.Name())
	assert.Equal(t, "import", s.Import.Name())
	assert.Equal(t, "loading", s.Loading.Name())

	done := make(chan struct{})
	require.NoError(t, s.Processing.Submit(func() { close(done) }))
	s.Close()

	select {
	case <-done:
	default:
		t.Fatal("pending task did not run before Close returned")
	}
}

func TestSet_CloseDrainsFeedersFirst(t *testing.T) {
	t.Parallel()

	s := NewSet()

	release := make(chan struct{})
	var decoded atomic.Bool

	require.NoError(t, s.Import.Submit(func() {
		<-release
		assert.NoError(t, s.Processing.Submit(func() { decoded.Store(true) }))
	}))

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	s.Close()
	assert.True(t, decoded.Load())
}
