package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptdesk/document"
	"github.com/robbyt/go-scriptdesk/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <path> [path...]",
	Short: "Check scripts again whenever they change on disk",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("run", false, "run a script after every change that checks cleanly")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	runAfter, err := cmd.Flags().GetBool("run")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stop := a.start(ctx)
	defer stop()

	docs := make(map[string]*document.Document, len(args))
	for _, path := range args {
		doc, err := a.workspace.Open(path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		docs[abs] = doc
	}

	validate := func(path string, doc *document.Document) {
		a.term.setFile(path)
		if runAfter {
			a.ctrl.Run(ctx, doc)
			return
		}
		a.ctrl.Check(ctx, doc)
	}

	for path, doc := range docs {
		if err := a.loop.Call(ctx, func() { validate(path, doc) }); err != nil {
			return err
		}
	}

	w, err := watch.New(args, func(paths []string) {
		a.loop.Post(func() {
			for _, path := range paths {
				doc, ok := docs[path]
				if !ok {
					continue
				}
				if err := doc.Reload(); err != nil {
					a.logger.Warn("Failed to reload script", "path", path, "error", err)
					continue
				}
				validate(path, doc)
			}
		})
	}, a.handler)
	if err != nil {
		return err
	}

	debounce, err := a.cfg.Debounce()
	if err != nil {
		return err
	}
	w.SetDebounce(debounce)

	err = w.Run(ctx)
	a.executor.Wait()
	return err
}
