package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/splitarg/derive"
	"go.jacobcolvin.com/splitarg/internal/splog"
	"go.jacobcolvin.com/splitarg/profiler"
	"go.jacobcolvin.com/splitarg/splitter"
)

func newBenchCmd() *cobra.Command {
	var (
		iterations int
		tail       bool
	)

	prof := profiler.New()

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeatedly split a fixed argv and report throughput, optionally under pprof",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := prof.Start(); err != nil {
				return fmt.Errorf("start profiler: %w", err)
			}

			defer func() {
				if err := prof.Stop(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "stop profiler: %v\n", err)
				}
			}()

			return runBench(cmd, &prof, iterations, tail)
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 100_000, "number of Split calls to run")
	cmd.Flags().BoolVar(&tail, "tail-log", false, "fan progress log entries to a live subscriber printed alongside stderr")
	prof.RegisterFlags(cmd.Flags())

	return cmd
}

func runBench(cmd *cobra.Command, prof *profiler.Profiler, iterations int, tail bool) error {
	s, err := derive.Build[deployArgs]()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	sp := splitter.FromSchema[deployArgs](s)
	toks := []string{"-v", "--tag", "a", "--tag", "b", "--env", "prod", "checkout", "extra"}

	runID := uuid.New()

	// When --tail-log is set, progress entries are written through a
	// splog.Publisher so a subscriber can echo them to stdout as they
	// happen, independent of and concurrent with the stderr log stream.
	var (
		logger   *slog.Logger
		pub      *splog.Publisher
		tailDone chan struct{}
	)

	if tail {
		pub = splog.NewPublisher()

		handler, hErr := splog.NewHandlerFromStrings(io.MultiWriter(cmd.ErrOrStderr(), pub), "info", "text")
		if hErr != nil {
			return fmt.Errorf("build tail log handler: %w", hErr)
		}

		logger = slog.New(handler)

		sub := pub.Subscribe()
		tailDone = make(chan struct{})

		go func() {
			defer close(tailDone)

			for entry := range sub.C() {
				fmt.Fprintf(cmd.OutOrStdout(), "[tail] %s", entry)
			}
		}()
	}

	checkpoint := max(iterations/10, 1)

	start := time.Now()

	runErr := prof.Do(cmd.Context(), "split", func(context.Context) error {
		for i := range iterations {
			if _, err := sp.Split(toks); err != nil {
				return fmt.Errorf("split failed mid-benchmark: %w", err)
			}

			if logger != nil && (i+1)%checkpoint == 0 {
				logger.Info("bench progress", "run", runID, "completed", i+1, "total", iterations)
			}
		}

		return nil
	})

	if pub != nil {
		pub.Close()
		<-tailDone
	}

	if runErr != nil {
		return runErr
	}

	elapsed := time.Since(start)
	perOp := elapsed / time.Duration(iterations)

	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: %s splits in %s (%s/split, %s splits/sec)\n",
		runID, humanize.Comma(int64(iterations)), elapsed,
		perOp, humanize.Comma(int64(float64(iterations)/elapsed.Seconds())))

	return nil
}
