package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/splitarg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "splitarg %s\n", versionString())
			fmt.Fprintf(cmd.OutOrStdout(), "  revision:   %s\n", version.Revision)
			fmt.Fprintf(cmd.OutOrStdout(), "  go version: %s\n", version.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  platform:   %s/%s\n", version.GoOS, version.GoArch)

			return nil
		},
	}
}

func versionString() string {
	if version.Version != "" {
		return version.Version
	}

	return "dev"
}
