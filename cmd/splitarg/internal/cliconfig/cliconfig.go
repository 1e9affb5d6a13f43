// Package cliconfig groups the splitarg demo binary's own persistent CLI
// flags — the ones that configure the binary's logging, not the ones the
// splitter engine parses on behalf of a user-defined schema. It mirrors
// the teacher's Flags-names/Config-values pairing (see profile.Config).
package cliconfig

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/splitarg/internal/splog"
)

// Flags holds CLI flag names, allowing callers to customize flag names
// while keeping sensible defaults via [NewConfig].
type Flags struct {
	LogLevel  string
	LogFormat string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds the demo binary's persistent CLI flag values.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Pass LogLevel and LogFormat to
// [splog.NewHandlerFromStrings] to build a handler.
type Config struct {
	LogLevel  string
	LogFormat string
	Flags     Flags
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		LogLevel:  "log-level",
		LogFormat: "log-format",
	}

	return f.NewConfig()
}

// RegisterFlags adds the binary's persistent flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.LogLevel, c.Flags.LogLevel, string(splog.LevelInfo),
		"log level, one of: "+joinFormats(splog.GetAllLevelStrings()))
	flags.StringVar(&c.LogFormat, c.Flags.LogFormat, string(splog.FormatText),
		"log format, one of: "+joinFormats(splog.GetAllFormatStrings()))
}

// RegisterCompletions registers shell completions for this Config's flags.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.LogLevel,
		cobra.FixedCompletions(splog.GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return err
	}

	return cmd.RegisterFlagCompletionFunc(c.Flags.LogFormat,
		cobra.FixedCompletions(splog.GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
}

func joinFormats(ss []string) string {
	out := ss[0]
	for _, s := range ss[1:] {
		out += ", " + s
	}

	return out
}
