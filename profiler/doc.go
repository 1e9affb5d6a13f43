// [Profiler] adds runtime profiling capabilities to CLI applications.
//
// It supports CPU, heap, allocs, goroutine, threadcreate, block, and mutex
// profiles through command-line flags.
//
// [Profiler.Do] tags the profile samples taken while fn runs with an
// "op" pprof label, so a single CPU profile covering several kinds of
// work (e.g. splitting against more than one schema) can be filtered
// down to just one of them with `go tool pprof -tagfocus=op=<name>`.
//
// Typical usage wraps command execution with profiler lifecycle methods:
//
//	profiler := profiler.New()
//
//	rootCmd := &cobra.Command{
//	    PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
//	        return profiler.Start()
//	    },
//	}
//
//	profiler.RegisterFlags(rootCmd.PersistentFlags())
//	err := fang.Execute(ctx, rootCmd, ...)
//	stopErr := profiler.Stop()
//
// Users can then enable profiling via flags like --cpu-profile=cpu.prof.
package profiler
