package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const appName = "ecsfsctl"

var verbose bool

// Execute builds and runs the root command, grounded on ostafen-digler's
// cmd/cmd.Execute root-command wiring.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         appName + " - format, inspect, and mount ECS150FS disk images",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable trace-level logging")

	rootCmd.AddCommand(
		defineMkfsCommand(),
		defineInfoCommand(),
		defineLsCommand(),
		defineCpInCommand(),
		defineCpOutCommand(),
		defineRmCommand(),
		defineMountCommand(),
	)
	return rootCmd.Execute()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slogLevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// slogLevelTrace mirrors the trace level the library logs diagnostics at,
// one notch below slog.LevelDebug.
const slogLevelTrace = slog.LevelDebug - 2
