// Package eventloop runs callbacks one at a time on a single goroutine.
//
// Controls never lock their own state. Everything that mutates them (picker
// change notifications, reader callbacks, timers) is posted to a loop and
// executed serially, the same way a browser event loop would deliver them.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Poster schedules a callback on the loop.
type Poster interface {
	Post(fn func())
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Scheduler is a Poster that can also delay callbacks.
type Scheduler interface {
	Poster
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is a Scheduler backed by an unbounded queue. Post never blocks, so
// callbacks may post to the loop that runs them.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// New creates a loop with room for size callbacks before the queue grows.
func New(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		queue:  make([]func(), 0, size),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post queues fn. Callbacks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	select {
	case <-l.done:
		l.mu.Unlock()
		return
	default:
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn to the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Pending is the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// pop takes the oldest callback. closed is set once the loop is closed.
func (l *Loop) pop() (fn func(), closed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.done:
		return nil, true
	default:
	}
	if len(l.queue) == 0 {
		return nil, false
	}
	fn = l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, false
}

// Next blocks until a callback is available or the loop is closed.
func (l *Loop) Next() (func(), bool) {
	for {
		fn, closed := l.pop()
		if closed {
			return nil, false
		}
		if fn != nil {
			return fn, true
		}
		select {
		case <-l.signal:
		case <-l.done:
			return nil, false
		}
	}
}

// Run executes callbacks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn, closed := l.pop()
		if closed {
			return nil
		}
		if fn != nil {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.signal:
		}
	}
}

// Close stops the loop. Pending callbacks are discarded.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		close(l.done)
		l.queue = nil
		l.mu.Unlock()
	})
}

// Done is closed once the loop has been closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
