package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// Loop is a Dispatcher backed by a single goroutine running Run. Its queue is
// unbounded, so functions running on the loop may post more work without
// blocking.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a Loop. Nothing runs until Run is called.
func NewLoop(handler slog.Handler) *Loop {
	_, logger := helpers.SetupLogger(handler, "dispatch", "Loop")
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Post implements Dispatcher.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call posts fn and waits until it has run on the loop or ctx is done.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posted functions until ctx is done. A panic in a posted
// function is logged and does not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			for _, fn := range l.drain() {
				l.runOne(fn)
			}
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) runOne(fn func()) {
	err := helpers.GuardErr(func() error {
		fn()
		return nil
	})
	if err != nil {
		l.logger.Error("Posted function panicked", "error", err)
	}
}
