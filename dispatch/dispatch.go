// Package dispatch runs node lifecycle callbacks on the execution context
// that owns the graphics device, and waits for them.
//
// Graphics contexts are usually bound to a single OS thread. Thread pins a
// goroutine to one OS thread and funnels callbacks through it; Inline runs
// them on the caller's goroutine for headless use and tests.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
)

var ErrClosed = errors.New("dispatch: closed")

// Dispatcher runs fn on its execution context and returns fn's error once
// fn has completed. ctx only gates submission: a callback that started is
// always awaited.
type Dispatcher interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Inline runs callbacks on the calling goroutine.
type Inline struct{}

func (Inline) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

type threadKey struct{}

// Thread runs callbacks one at a time on a goroutine locked to a single OS
// thread.
type Thread struct {
	log  *slog.Logger
	jobs chan job
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewThread starts the dispatch goroutine. A nil logger discards output.
func NewThread(log *slog.Logger) *Thread {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Thread{
		log:  log,
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Thread) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	t.log.Debug("Dispatch thread started")
	for j := range t.jobs {
		j.result <- t.run(j)
	}
	t.log.Debug("Dispatch thread stopped")
}

func (t *Thread) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("Dispatched callback panicked", "panic", fmt.Sprint(r))
			err = fmt.Errorf("dispatch: callback panicked: %v", r)
		}
	}()
	return j.fn(context.WithValue(j.ctx, threadKey{}, t))
}

// Do runs fn on the dispatch thread. Calls made from inside a callback
// already running on this thread execute inline instead of deadlocking.
func (t *Thread) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(threadKey{}).(*Thread); owner == t {
		return fn(ctx)
	}

	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	// Hold the lock while submitting so Close cannot close jobs under us.
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	select {
	case t.jobs <- j:
	case <-ctx.Done():
		t.mu.Unlock()
		return ctx.Err()
	}
	t.mu.Unlock()

	return <-j.result
}

// Close stops the dispatch thread after the running callback completes.
func (t *Thread) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.closed = true
	close(t.jobs)
	t.mu.Unlock()

	<-t.done
	return nil
}

var (
	_ Dispatcher = Inline{}
	_ Dispatcher = (*Thread)(nil)
)
