// Package loop provides the single-threaded executor that owns a shell's
// state. Web view callbacks, bridge messages and API requests are all posted
// onto one Loop so the session and navigator never see concurrent calls.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is offered to a stopped loop.
var ErrClosed = errors.New("loop closed")

// Executor runs functions on an owning goroutine.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Post(fn func()) { f(fn) }

// Immediate runs posted functions on the caller's goroutine.
var Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

// Loop runs posted functions in order on the goroutine calling Run.
type Loop struct {
	queue    chan func()
	done     chan struct{}
	once     sync.Once
	deferred []func()
}

// New creates a loop with the given queue capacity.
func New(buffer int) *Loop {
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted functions until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		case fn := <-l.queue:
			l.run(fn)
		}
	}
}

// run executes fn, then everything it deferred, in order.
func (l *Loop) run(fn func()) {
	fn()
	for len(l.deferred) > 0 {
		next := l.deferred[0]
		l.deferred = l.deferred[1:]
		next()
	}
	l.deferred = nil
}

// Defer schedules fn to run right after the current task. It never blocks
// and must only be called from the loop goroutine; use Post from anywhere
// else.
func (l *Loop) Defer(fn func()) {
	l.deferred = append(l.deferred, fn)
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop is closed.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.queue <- fn:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- wrapped:
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop. Queued functions that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
