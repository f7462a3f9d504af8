// Package tasks runs long operations off the interactive thread.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/robbyt/go-scriptdesk/dispatch"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
)

// State is how a task ended.
type State int

const (
	Succeeded State = iota
	Failed
	Canceled
)

func (s State) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is passed to a task's completion callback.
type Status struct {
	Label    string
	State    State
	Err      error
	Duration time.Duration
}

// Executor runs labelled tasks in the background and reports completion on a
// dispatcher. The completion callback runs exactly once per Execute, whether
// the task succeeded, returned an error, panicked, or never started because
// its context was cancelled.
type Executor struct {
	dispatcher    dispatch.Dispatcher
	sem           *semaphore.Weighted
	maxConcurrent int64
	wg            sync.WaitGroup

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates an Executor that posts completions to d.
func New(d dispatch.Dispatcher, opts ...FunctionalOption) (*Executor, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}

	e := &Executor{dispatcher: d}
	e.applyDefaults()

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying executor option: %w", err)
		}
	}

	if e.logger != nil {
		e.logHandler = e.logger.Handler()
	} else {
		e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "tasks", "Executor")
	}

	e.sem = semaphore.NewWeighted(e.maxConcurrent)
	return e, nil
}

func (e *Executor) String() string {
	return fmt.Sprintf("tasks.Executor{MaxConcurrent: %d}", e.maxConcurrent)
}

// Execute starts task in the background and returns immediately. onComplete
// may be nil.
func (e *Executor) Execute(ctx context.Context, label string, task func(context.Context) error, onComplete func(Status)) {
	logger := e.logger.WithGroup("Execute").With("task", label)
	e.wg.Add(1)

	go func() {
		start := time.Now()
		st := Status{Label: label}

		if err := e.sem.Acquire(ctx, 1); err != nil {
			st.State = Canceled
			st.Err = err
		} else {
			logger.DebugContext(ctx, "Task started")
			err := helpers.GuardErr(func() error { return task(ctx) })
			e.sem.Release(1)

			switch {
			case err == nil:
				st.State = Succeeded
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				st.State = Canceled
				st.Err = err
			default:
				st.State = Failed
				st.Err = err
			}
		}
		st.Duration = time.Since(start)
		logger.DebugContext(ctx, "Task finished", "state", st.State, "duration", st.Duration)

		e.dispatcher.Post(func() {
			defer e.wg.Done()
			if onComplete != nil {
				onComplete(st)
			}
		})
	}()
}

// Wait blocks until every started task has finished and its completion
// callback has run.
func (e *Executor) Wait() {
	e.wg.Wait()
}
