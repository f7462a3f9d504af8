package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Rewrite Starlark scripts into canonical format",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list scripts that need formatting instead of rewriting them")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	check, err := cmd.Flags().GetBool("check")
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

	out := cmd.OutOrStdout()
	unformatted := 0
	for _, path := range args {
		doc, err := a.workspace.Open(path)
		if err != nil {
			return err
		}

		var changed bool
		if err := a.loop.Call(ctx, func() {
			a.term.setFile(path)
			changed = a.ctrl.Format(ctx, doc)
		}); err != nil {
			return err
		}
		if !changed {
			continue
		}

		if check {
			unformatted++
			fmt.Fprintln(out, path)
			continue
		}
		if err := doc.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "reformatted %s\n", path)
	}

	if check && unformatted > 0 {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}
