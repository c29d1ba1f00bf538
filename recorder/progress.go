// SPDX-License-Identifier: EPL-2.0

package recorder

import (
	"sync"
	"time"
)

type progressTick struct {
	elapsedMs int64
	amp       int
}

// progressTimer reports elapsed time and amplitude every interval while
// armed. Elapsed time counts ticks, so it survives pause and resume and only
// grows. A slow consumer loses ticks instead of queueing them.
type progressTimer struct {
	interval time.Duration
	amp      func() int
	emit     func(elapsedMs int64, amp int)

	mu      sync.Mutex
	elapsed int64
	halt    chan struct{}

	emitMu  sync.Mutex
	emitted int64
}

func newProgressTimer(interval time.Duration, amp func() int, emit func(int64, int)) *progressTimer {
	return &progressTimer{interval: interval, amp: amp, emit: emit, emitted: -1}
}

// start arms the timer. The first tick fires at once.
func (p *progressTimer) start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.halt != nil {
		return
	}

	halt := make(chan struct{})
	ticks := make(chan progressTick, 1)
	p.halt = halt

	go p.run(halt, ticks)
	go p.deliver(halt, ticks)
}

// pause disarms the timer and keeps the elapsed time. A tick being emitted
// when pause is called completes before pause returns, and none follows.
func (p *progressTimer) pause() {
	p.mu.Lock()
	halt := p.halt
	p.halt = nil
	p.mu.Unlock()

	if halt == nil {
		return
	}

	close(halt)

	// Wait out an emit in flight.
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
}

func (p *progressTimer) elapsedMs() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.elapsed
}

func (p *progressTimer) run(halt <-chan struct{}, ticks chan<- progressTick) {
	defer close(ticks)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-halt:
			return
		default:
		}

		p.offer(ticks)

		select {
		case <-halt:
			return
		case <-t.C:
		}
	}
}

func (p *progressTimer) offer(ticks chan<- progressTick) {
	p.mu.Lock()
	ms := p.elapsed
	p.elapsed += max(p.interval.Milliseconds(), 1)
	p.mu.Unlock()

	select {
	case ticks <- progressTick{elapsedMs: ms, amp: p.amp()}:
	default:
	}
}

func (p *progressTimer) deliver(halt <-chan struct{}, ticks <-chan progressTick) {
	for t := range ticks {
		p.emitMu.Lock()
		select {
		case <-halt:
			p.emitMu.Unlock()
			continue
		default:
		}

		if t.elapsedMs > p.emitted {
			p.emitted = t.elapsedMs
			p.emit(t.elapsedMs, t.amp)
		}
		p.emitMu.Unlock()
	}
}
