package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptdesk/controller"
)

var runCmd = &cobra.Command{
	Use:   "run <path>",
	Short: "Save and check a script, then reload the host's extensions",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stop := a.start(ctx)
	defer stop()

	path := args[0]
	doc, err := a.workspace.Open(path)
	if err != nil {
		return err
	}

	var result controller.RunResult
	if err := a.loop.Call(ctx, func() {
		a.term.setFile(path)
		result = a.ctrl.Run(ctx, doc)
	}); err != nil {
		return err
	}
	if result != controller.RunScheduled {
		return fmt.Errorf("run: %s", result)
	}

	a.executor.Wait()

	out := cmd.OutOrStdout()
	for _, ext := range a.registry.Extensions() {
		fmt.Fprintf(out, "loaded %s (%s)\n", pathColor.Sprint(ext.Name), ext.Type)
	}
	return nil
}
