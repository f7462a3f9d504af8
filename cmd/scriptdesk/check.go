package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robbyt/go-scriptdesk/report"
)

var checkCmd = &cobra.Command{
	Use:   "check <path> [path...]",
	Short: "Report compile errors and lint issues in scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stop := a.start(ctx)
	defer stop()

	failed := 0
	for _, path := range args {
		doc, err := a.workspace.Open(path)
		if err != nil {
			return err
		}

		var outcome report.Outcome
		if err := a.loop.Call(ctx, func() {
			a.term.setFile(path)
			outcome = a.ctrl.Check(ctx, doc)
		}); err != nil {
			return err
		}
		if !outcome.Success {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("check: %d of %d scripts have errors", failed, len(args))
	}
	return nil
}
