// Package serial runs mutations one at a time on a dedicated goroutine.
package serial

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("serial: queue closed")

type job struct {
	fn  func() error
	res chan error
}

// Queue is a single-writer task queue. Jobs must not call Do on the same
// queue, or they deadlock.
type Queue struct {
	jobs chan job
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewQueue() *Queue {
	q := &Queue{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case j := <-q.jobs:
			j.res <- safeCall(j.fn)
		case <-q.done:
			return
		}
	}
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serial: job panicked: %v", r)
		}
	}()
	return fn()
}

// Do runs fn on the writer goroutine and returns its error. Once fn has been
// handed over it always runs to completion; ctx only bounds the wait for a slot.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, res: make(chan error, 1)}
	select {
	case q.jobs <- j:
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.res
}

// Close stops the writer after the job in flight, if any.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}
