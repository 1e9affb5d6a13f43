// Package main provides the CLI entry point for splitarg, a demonstration
// binary that splits argv against the derived demo schemas in this
// package and prints the resulting aggregate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/splitarg/cmd/splitarg/internal/cliconfig"
	"go.jacobcolvin.com/splitarg/internal/splog"
)

func main() {
	cfg := cliconfig.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "splitarg",
		Short:         "Demonstrate the splitarg argument-splitting engine",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg.RegisterFlags(rootCmd.PersistentFlags())

	if err := cfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(newRunCmd(), newJarCmd(), newBenchCmd(), newDocsCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		logSplitFailure(cfg, err)
		os.Exit(1)
	}
}

func logSplitFailure(cfg *cliconfig.Config, err error) {
	handler, hErr := splog.NewHandlerFromStrings(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if hErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}

	logger := newLoggerFrom(handler)

	if kind, opt, msg, ok := splitError(err); ok {
		splog.LogSplitError(logger, kind, opt, msg)
		return
	}

	logger.Error(err.Error())
}
