package controller

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scriptdesk/controller/mocks"
	"github.com/robbyt/go-scriptdesk/diagnostic"
	"github.com/robbyt/go-scriptdesk/dispatch"
	"github.com/robbyt/go-scriptdesk/document"
	"github.com/robbyt/go-scriptdesk/overlay"
	"github.com/robbyt/go-scriptdesk/report"
	"github.com/robbyt/go-scriptdesk/tasks"
)

const fileName = "plugin.star"

// recordingLabel keeps every status text it was given.
type recordingLabel struct {
	texts []string
}

func (l *recordingLabel) SetText(text string) {
	l.texts = append(l.texts, text)
}

type fixture struct {
	ctrl      *Controller
	compiler  *mocks.Compiler
	linter    *mocks.Linter
	host      *mocks.Host
	scheduler Scheduler
	executor  *tasks.Executor
	surface   *overlay.MemorySurface
	label     *recordingLabel
}

func newFixture(t *testing.T, scheduler Scheduler) *fixture {
	t.Helper()
	handler := slog.NewTextHandler(os.Stdout, nil)

	f := &fixture{
		compiler: &mocks.Compiler{},
		linter:   &mocks.Linter{},
		host:     &mocks.Host{},
		surface:  &overlay.MemorySurface{},
		label:    &recordingLabel{},
	}

	if scheduler == nil {
		executor, err := tasks.New(dispatch.Inline{}, tasks.WithLogHandler(handler))
		require.NoError(t, err)
		f.executor = executor
		scheduler = executor
	}
	f.scheduler = scheduler

	ctrl, err := New(
		WithCompiler(f.compiler),
		WithLinter(f.linter),
		WithScheduler(scheduler),
		WithHost(f.host),
		WithSurface(f.surface),
		WithStatusLabel(f.label),
		WithLogHandler(handler),
	)
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

func newDoc(t *testing.T, text string) *document.Document {
	t.Helper()
	doc, err := document.New(fileName, text)
	require.NoError(t, err)
	return doc
}

func compileErrors(n int) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, n)
	for i := range out {
		out[i] = diagnostic.NewCompilerError("undefined: x", diagnostic.Position{Line: i + 1, Column: 1})
	}
	return out
}

func lintIssues(n int) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, n)
	for i := range out {
		out[i] = diagnostic.NewLintIssue("naming", "bad name", diagnostic.Position{Line: i + 1, Column: 1})
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()
	handler := slog.NewTextHandler(os.Stdout, nil)
	comp, lint, host, sched := &mocks.Compiler{}, &mocks.Linter{}, &mocks.Host{}, &mocks.Scheduler{}

	tests := []struct {
		name    string
		opts    []FunctionalOption
		wantErr error
	}{
		{name: "missing compiler", opts: []FunctionalOption{WithLinter(lint), WithScheduler(sched), WithHost(host)}, wantErr: ErrCompilerNil},
		{name: "missing linter", opts: []FunctionalOption{WithCompiler(comp), WithScheduler(sched), WithHost(host)}, wantErr: ErrLinterNil},
		{name: "missing scheduler", opts: []FunctionalOption{WithCompiler(comp), WithLinter(lint), WithHost(host)}, wantErr: ErrSchedulerNil},
		{name: "missing host", opts: []FunctionalOption{WithCompiler(comp), WithLinter(lint), WithScheduler(sched)}, wantErr: ErrHostNil},
		{name: "complete", opts: []FunctionalOption{WithCompiler(comp), WithLinter(lint), WithScheduler(sched), WithHost(host), WithLogHandler(handler)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, err := New(tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "controller.Controller", ctrl.String())
			assert.Empty(t, ctrl.Status())
			assert.NotNil(t, ctrl.Overlay())
		})
	}

	t.Run("nil log handler", func(t *testing.T) {
		_, err := New(WithLogHandler(nil))
		require.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := New(WithLogger(nil))
		require.Error(t, err)
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const text = "print(x)\n"

	t.Run("compile errors skip the linter", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{Errors: compileErrors(2)}, nil)

		outcome := f.ctrl.Check(ctx, newDoc(t, text))

		assert.Equal(t, report.Outcome{CompileErrors: 2, LintIssues: 0, Success: false}, outcome)
		assert.Equal(t, "Parsing errors: 2", f.ctrl.Status())
		f.linter.AssertNotCalled(t, "Lint", mock.Anything, mock.Anything)

		markers := f.surface.Markers()
		require.Len(t, markers, 2)
		for _, m := range markers {
			assert.Equal(t, overlay.KindError, m.Kind)
		}
	})

	t.Run("lint issues are advisory", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(lintIssues(3), nil).Once()

		outcome := f.ctrl.Check(ctx, newDoc(t, text))

		assert.Equal(t, report.Outcome{CompileErrors: 0, LintIssues: 3, Success: true}, outcome)
		assert.Equal(t, "Lint issues: 3", f.ctrl.Status())
		f.linter.AssertExpectations(t)

		markers := f.surface.Markers()
		require.Len(t, markers, 3)
		for _, m := range markers {
			assert.Equal(t, overlay.KindLint, m.Kind)
		}
	})

	t.Run("clean script has empty status", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)

		outcome := f.ctrl.Check(ctx, newDoc(t, text))

		assert.True(t, outcome.Success)
		assert.Empty(t, f.ctrl.Status())
		assert.Empty(t, f.surface.Markers())
		assert.Equal(t, 1, f.surface.Applies())
	})

	t.Run("compiler failure fails open", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(nil, errors.New("compiler crashed"))
		f.linter.On("Lint", text, fileName).Return(lintIssues(1), nil)

		outcome := f.ctrl.Check(ctx, newDoc(t, text))

		assert.True(t, outcome.Success)
		assert.Equal(t, 0, outcome.CompileErrors)
		assert.Equal(t, "Lint issues: 1", f.ctrl.Status())
	})

	t.Run("compiler panic fails open", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Run(func(mock.Arguments) {
			panic("compiler not initialized")
		})
		f.linter.On("Lint", text, fileName).Return(nil, nil)

		var outcome report.Outcome
		require.NotPanics(t, func() { outcome = f.ctrl.Check(ctx, newDoc(t, text)) })
		assert.True(t, outcome.Success)
		assert.Empty(t, f.ctrl.Status())
	})

	t.Run("nil analysis counts as clean", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(nil, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)

		assert.True(t, f.ctrl.Check(ctx, newDoc(t, text)).Success)
	})

	t.Run("linter failure fails open", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, errors.New("linter not initialized"))

		outcome := f.ctrl.Check(ctx, newDoc(t, text))

		assert.Equal(t, report.Outcome{Success: true}, outcome)
		assert.Empty(t, f.ctrl.Status())
	})

	t.Run("linter panic fails open", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Run(func(mock.Arguments) { panic("boom") })

		outcome := f.ctrl.Check(ctx, newDoc(t, text))
		assert.Equal(t, report.Outcome{Success: true}, outcome)
	})

	t.Run("status resets at the start of every check", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{Errors: compileErrors(1)}, nil)

		doc := newDoc(t, text)
		f.ctrl.Check(ctx, doc)
		f.ctrl.Check(ctx, doc)

		assert.Equal(t, []string{"", "Parsing errors: 1", "", "Parsing errors: 1"}, f.label.texts)
	})

	t.Run("stale diagnostics are replaced", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := newDoc(t, text)

		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{Errors: compileErrors(2)}, nil).Once()
		f.ctrl.Check(ctx, doc)
		require.Len(t, f.surface.Markers(), 2)

		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil).Once()
		f.linter.On("Lint", text, fileName).Return(lintIssues(1), nil)
		f.ctrl.Check(ctx, doc)

		markers := f.surface.Markers()
		require.Len(t, markers, 1)
		assert.Equal(t, overlay.KindLint, markers[0].Kind)
	})

	t.Run("caret offset is passed to the compiler", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := newDoc(t, text)
		doc.SetCaret(6)
		f.compiler.On("Analyze", fileName, text, 6).Return(&diagnostic.Analysis{}, nil).Once()
		f.linter.On("Lint", text, fileName).Return(nil, nil)

		f.ctrl.Check(ctx, doc)
		f.compiler.AssertExpectations(t)
	})
}

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const text = "print(x)\n"

	mockDoc := func() *mocks.Document {
		doc := &mocks.Document{}
		doc.On("Name").Return(fileName)
		doc.On("Text").Return(text)
		doc.On("CaretOffset").Return(0)
		return doc
	}

	t.Run("failed check schedules nothing", func(t *testing.T) {
		sched := &mocks.Scheduler{}
		f := newFixture(t, sched)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{Errors: compileErrors(1)}, nil)
		doc := mockDoc()
		doc.On("Save").Return(nil).Once()

		result := f.ctrl.Run(ctx, doc)

		assert.Equal(t, RunAborted, result)
		assert.Equal(t, "Parsing errors: 1", f.ctrl.Status())
		sched.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.host.AssertNotCalled(t, "ReloadExtensions", mock.Anything)
		doc.AssertExpectations(t)
	})

	t.Run("clean script reloads and refreshes once", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(lintIssues(2), nil)
		f.host.On("ReloadExtensions", mock.Anything).Return(nil).Once()
		f.host.On("ReloadInactiveTabs").Return().Once()
		f.host.On("RefreshTree").Return().Once()
		doc := mockDoc()
		doc.On("Save").Return(nil).Once()

		result := f.ctrl.Run(ctx, doc)
		f.executor.Wait()

		assert.Equal(t, RunScheduled, result)
		assert.Empty(t, f.ctrl.Status(), "status is reset once the run is scheduled")
		doc.AssertNumberOfCalls(t, "Save", 1)
		f.host.AssertNumberOfCalls(t, "ReloadExtensions", 1)
		f.host.AssertNumberOfCalls(t, "ReloadInactiveTabs", 1)
		f.host.AssertNumberOfCalls(t, "RefreshTree", 1)
	})

	t.Run("reload failure still refreshes", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)
		f.host.On("ReloadExtensions", mock.Anything).Return(errors.New("reload failed"))
		f.host.On("ReloadInactiveTabs").Return()
		f.host.On("RefreshTree").Return()
		doc := mockDoc()
		doc.On("Save").Return(nil)

		assert.Equal(t, RunScheduled, f.ctrl.Run(ctx, doc))
		f.executor.Wait()

		f.host.AssertNumberOfCalls(t, "ReloadInactiveTabs", 1)
		f.host.AssertNumberOfCalls(t, "RefreshTree", 1)
		assert.Empty(t, f.ctrl.Status())
	})

	t.Run("reload panic still refreshes", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)
		f.host.On("ReloadExtensions", mock.Anything).Run(func(mock.Arguments) { panic("boom") })
		f.host.On("ReloadInactiveTabs").Return()
		f.host.On("RefreshTree").Return()
		doc := mockDoc()
		doc.On("Save").Return(nil)

		assert.Equal(t, RunScheduled, f.ctrl.Run(ctx, doc))
		f.executor.Wait()

		f.host.AssertNumberOfCalls(t, "ReloadInactiveTabs", 1)
		f.host.AssertNumberOfCalls(t, "RefreshTree", 1)
	})

	t.Run("refresh panic does not skip the tree", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)
		f.host.On("ReloadExtensions", mock.Anything).Return(nil)
		f.host.On("ReloadInactiveTabs").Run(func(mock.Arguments) { panic("tabs") })
		f.host.On("RefreshTree").Return()
		doc := mockDoc()
		doc.On("Save").Return(nil)

		f.ctrl.Run(ctx, doc)
		f.executor.Wait()

		f.host.AssertNumberOfCalls(t, "RefreshTree", 1)
	})

	t.Run("save failure does not stop the run", func(t *testing.T) {
		f := newFixture(t, nil)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)
		f.host.On("ReloadExtensions", mock.Anything).Return(nil)
		f.host.On("ReloadInactiveTabs").Return()
		f.host.On("RefreshTree").Return()
		doc := mockDoc()
		doc.On("Save").Return(errors.New("disk full"))

		assert.Equal(t, RunScheduled, f.ctrl.Run(ctx, doc))
		f.executor.Wait()
		f.host.AssertNumberOfCalls(t, "ReloadExtensions", 1)
	})

	t.Run("one run in flight per document", func(t *testing.T) {
		sched := &mocks.Scheduler{}
		f := newFixture(t, sched)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)
		f.host.On("ReloadInactiveTabs").Return()
		f.host.On("RefreshTree").Return()

		var onComplete func(tasks.Status)
		sched.On("Execute", mock.Anything, RunLabel, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				onComplete = args.Get(3).(func(tasks.Status))
			})

		doc := mockDoc()
		doc.On("Save").Return(nil)

		assert.Equal(t, RunScheduled, f.ctrl.Run(ctx, doc))
		assert.Equal(t, RunBusy, f.ctrl.Run(ctx, doc))
		sched.AssertNumberOfCalls(t, "Execute", 1)

		require.NotNil(t, onComplete)
		onComplete(tasks.Status{Label: RunLabel, State: tasks.Succeeded})

		assert.Equal(t, RunScheduled, f.ctrl.Run(ctx, doc))
		sched.AssertNumberOfCalls(t, "Execute", 2)
	})

	t.Run("reload runs on the task context", func(t *testing.T) {
		sched := &mocks.Scheduler{}
		f := newFixture(t, sched)
		f.compiler.On("Analyze", fileName, text, 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", text, fileName).Return(nil, nil)

		type key struct{}
		taskCtx := context.WithValue(context.Background(), key{}, "task")
		f.host.On("ReloadExtensions", taskCtx).Return(errors.New("ignored")).Once()

		var taskErr error
		sched.On("Execute", mock.Anything, RunLabel, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				task := args.Get(2).(func(context.Context) error)
				taskErr = task(taskCtx)
			})

		doc := mockDoc()
		doc.On("Save").Return(nil)
		f.ctrl.Run(ctx, doc)

		assert.NoError(t, taskErr, "reload failures are logged, not returned")
		f.host.AssertExpectations(t)
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unchanged text", func(t *testing.T) {
		f := newFixture(t, nil)
		f.linter.On("Format", "x = 1\n", fileName).Return("x = 1\n", nil)
		doc := newDoc(t, "x = 1\n")

		changed := f.ctrl.Format(ctx, doc)

		assert.False(t, changed)
		assert.Equal(t, "x = 1\n", doc.Text())
		assert.Empty(t, f.ctrl.Status())
		assert.Equal(t, []string{""}, f.label.texts)
		assert.Equal(t, 0, f.surface.Applies(), "overlay is left alone")
	})

	t.Run("changed text", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := newDoc(t, "x=1\n")

		f.compiler.On("Analyze", fileName, "x=1\n", 0).Return(&diagnostic.Analysis{}, nil)
		f.linter.On("Lint", "x=1\n", fileName).Return(lintIssues(1), nil)
		f.ctrl.Check(ctx, doc)
		require.Len(t, f.surface.Markers(), 1)

		f.linter.On("Format", "x=1\n", fileName).Return("x = 1\n", nil)
		changed := f.ctrl.Format(ctx, doc)

		assert.True(t, changed)
		assert.Equal(t, "x = 1\n", doc.Text())
		assert.True(t, doc.Dirty())
		assert.Equal(t, report.CodeUpdated, f.ctrl.Status())
		assert.Empty(t, f.surface.Markers())
		assert.Empty(t, f.ctrl.Overlay().Pending())
	})

	t.Run("formatter failure changes nothing", func(t *testing.T) {
		f := newFixture(t, nil)
		f.linter.On("Format", "x=1\n", fileName).Return("", errors.New("formatter not initialized"))
		doc := newDoc(t, "x=1\n")

		assert.False(t, f.ctrl.Format(ctx, doc))
		assert.Equal(t, "x=1\n", doc.Text())
		assert.Empty(t, f.ctrl.Status())
	})

	t.Run("formatter panic changes nothing", func(t *testing.T) {
		f := newFixture(t, nil)
		f.linter.On("Format", "x=1\n", fileName).Run(func(mock.Arguments) { panic("boom") })
		doc := newDoc(t, "x=1\n")

		assert.False(t, f.ctrl.Format(ctx, doc))
		assert.Equal(t, "x=1\n", doc.Text())
	})

	t.Run("status from an earlier check is reset", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := newDoc(t, "x = 1\n")
		f.compiler.On("Analyze", fileName, "x = 1\n", 0).Return(&diagnostic.Analysis{Errors: compileErrors(1)}, nil)
		f.ctrl.Check(ctx, doc)
		require.Equal(t, "Parsing errors: 1", f.ctrl.Status())

		f.linter.On("Format", "x = 1\n", fileName).Return("x = 1\n", nil)
		f.ctrl.Format(ctx, doc)
		assert.Empty(t, f.ctrl.Status())
	})
}

func TestRunResultString(t *testing.T) {
	assert.Equal(t, "aborted", RunAborted.String())
	assert.Equal(t, "scheduled", RunScheduled.String())
	assert.Equal(t, "busy", RunBusy.String())
	assert.Equal(t, "RunResult(9)", RunResult(9).String())
}
