package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptdesk/controller"
	"github.com/robbyt/go-scriptdesk/dispatch"
	"github.com/robbyt/go-scriptdesk/host"
	"github.com/robbyt/go-scriptdesk/internal/config"
	"github.com/robbyt/go-scriptdesk/internal/helpers"
	"github.com/robbyt/go-scriptdesk/lint"
	"github.com/robbyt/go-scriptdesk/machines"
	"github.com/robbyt/go-scriptdesk/tasks"
	"github.com/robbyt/go-scriptdesk/workspace"
)

// app wires one editor session: the interactive loop, the background
// executor, the extension registry, the open tabs and the controller.
type app struct {
	cfg       config.Config
	handler   slog.Handler
	loop      *dispatch.Loop
	executor  *tasks.Executor
	registry  *host.Registry
	workspace *workspace.Workspace
	term      *terminal
	ctrl      *controller.Controller
	logger    *slog.Logger
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if dir, _ := flags.GetString("extensions"); dir != "" {
		cfg.Extensions.Dir = dir
	}
	return cfg, cfg.Validate()
}

func newApp(cmd *cobra.Command) (*app, error) {
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return nil, err
	}
	if err := configureColor(colorMode); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	compiler, err := machines.NewCompiler(handler, cfg.GlobalNames())
	if err != nil {
		return nil, err
	}

	linter, err := lint.New(lint.WithRules(cfg.Lint.Rules), lint.WithLogHandler(handler))
	if err != nil {
		return nil, fmt.Errorf("failed to create linter: %w", err)
	}

	registry, err := host.New(cfg.Extensions.Dir, compiler,
		host.WithGlobals(cfg.Globals),
		host.WithCtxData(cfg.Ctx),
		host.WithLogHandler(handler),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extension registry: %w", err)
	}

	ws, err := workspace.New(registry, handler)
	if err != nil {
		return nil, err
	}

	loop := dispatch.NewLoop(handler)
	executor, err := tasks.New(loop,
		tasks.WithMaxConcurrent(cfg.Tasks.MaxConcurrent),
		tasks.WithLogHandler(handler),
	)
	if err != nil {
		return nil, err
	}

	term := newTerminal(cmd.OutOrStdout())
	ctrl, err := controller.New(
		controller.WithCompiler(compiler),
		controller.WithLinter(linter),
		controller.WithScheduler(executor),
		controller.WithHost(ws),
		controller.WithSurface(term),
		controller.WithStatusLabel(term),
		controller.WithLogHandler(handler),
	)
	if err != nil {
		return nil, err
	}

	_, logger := helpers.SetupLogger(handler, "scriptdesk", "App")
	return &app{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		loop:      loop,
		executor:  executor,
		registry:  registry,
		workspace: ws,
		term:      term,
		ctrl:      ctrl,
	}, nil
}

// start runs the interactive loop until the returned stop function is called.
// The loop outlives ctx so completions of cancelled tasks are still delivered.
func (a *app) start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.loop.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
