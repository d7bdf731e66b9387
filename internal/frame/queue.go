// Package frame hands work from other goroutines to the frame loop, which
// is the only goroutine allowed to touch the scene.
package frame

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrClosed   = errors.New("frame loop stopped")
	ErrPanicked = errors.New("frame job panicked")
)

type job struct {
	fn   func()
	done chan any
}

type Queue struct {
	jobs chan job
	stop chan struct{}

	// OnPanic, if set, is called on the frame loop with the value a job
	// panicked with, before Do returns ErrPanicked to its caller.
	OnPanic func(r any)
}

func NewQueue(size int) *Queue {
	return &Queue{
		jobs: make(chan job, size),
		stop: make(chan struct{}),
	}
}

// Do runs fn on the frame loop and waits for it. A panic in fn is
// returned as an error instead of crashing the loop.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan any, 1)}
	select {
	case q.jobs <- j:
	case <-q.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case r := <-j.done:
		if r != nil {
			return fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		return nil
	case <-q.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs every queued job and reports how many ran. Only the frame
// loop calls it.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case j := <-q.jobs:
			r := run(j.fn)
			if r != nil && q.OnPanic != nil {
				q.OnPanic(r)
			}
			j.done <- r
			n++
		default:
			return n
		}
	}
}

func run(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

// Close makes pending and future Do calls fail with ErrClosed.
func (q *Queue) Close() {
	select {
	case <-q.stop:
	default:
		close(q.stop)
	}
}
