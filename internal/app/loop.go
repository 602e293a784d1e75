package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrLoopClosed is returned when work is posted after Close.
var ErrLoopClosed = errors.New("event loop closed")

// EventLoop is the application's single logical UI thread. Everything that touches the
// store or a screen controller is posted here and runs to completion before the next event.
// The queue is unbounded, so Post never blocks, including from inside a running event.
type EventLoop struct {
	mu        sync.Mutex
	queue     []func()
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// NewEventLoop builds a loop whose queue starts with room for buffer events.
func NewEventLoop(buffer int, logger *zap.Logger) *EventLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &EventLoop{
		queue:  make([]func(), 0, buffer),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. It reports false if the loop has been closed.
func (l *EventLoop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts fn and waits until it has run on the loop.
func (l *EventLoop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Run processes events until ctx is cancelled or Close is called.
func (l *EventLoop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.done:
				return nil
			default:
			}
			l.dispatch(fn)
		}
	}
}

func (l *EventLoop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Close stops Run; queued events that have not started are dropped.
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *EventLoop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event handler panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
