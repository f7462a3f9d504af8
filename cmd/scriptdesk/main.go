package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the scriptdesk version, overridden at build time via -ldflags.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "scriptdesk",
	Short: "Check, format and run host extension scripts",
	Long: `scriptdesk is the headless core of a script editor. It checks Starlark and
Risor extension scripts, reformats them, and reloads the host's extensions
once a script is free of errors.`,
}

func init() {
	rootCmd.Version = Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)

	rootCmd.PersistentFlags().String("config", "", "path to scriptdesk.toml (default: search upwards)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "override log.level from the config file")
	rootCmd.PersistentFlags().String("extensions", "", "override extensions.dir from the config file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
