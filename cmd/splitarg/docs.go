package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/splitarg/derive"
	"go.jacobcolvin.com/splitarg/helptext"
)

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "Print the generated help text for the demo schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runSchema, err := derive.Build[deployArgs]()
			if err != nil {
				return fmt.Errorf("build run schema: %w", err)
			}

			jarSchema, err := derive.Build[jarArgs]()
			if err != nil {
				return fmt.Errorf("build jar schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "run:")
			fmt.Fprintln(cmd.OutOrStdout(), helptext.Render(runSchema))
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "jar:")
			fmt.Fprintln(cmd.OutOrStdout(), helptext.Render(jarSchema))

			return nil
		},
	}
}
