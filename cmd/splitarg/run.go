package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/splitarg/derive"
	"go.jacobcolvin.com/splitarg/preprocess"
	"go.jacobcolvin.com/splitarg/splitter"
)

// deployArgs is the demo schema for `splitarg run`: a flat, S1-style
// grammar with a flag, an optional value, a repeatable, a required
// positional, and a varargs tail.
type deployArgs struct {
	Verbose bool     `splitarg:"-v,--verbose,help=enable verbose logging"`
	Env     *string  `splitarg:"--env,help=target environment,default=staging"`
	Tag     []string `splitarg:"--tag,help=attach a tag (repeatable)"`
	Service string   `splitarg:"service,help=service name to deploy"`
	Rest    []string `splitarg:"args,varargs,help=extra arguments passed through to the deploy script"`
}

// jarArgs is the demo schema for `splitarg jar`: a nested Branch, modeling
// a tool like `jar` or `git` whose first positional switches the grammar
// for everything after it.
type jarArgs struct {
	Create *jarCreate `splitarg:"create,help=create a new archive"`
	List   *jarList   `splitarg:"list,help=list archive contents"`
}

type jarCreate struct {
	Verbose bool     `splitarg:"-v,help=list files as they are added"`
	File    string   `splitarg:"file,help=output archive path"`
	Inputs  []string `splitarg:"inputs,varargs,help=files to add"`
}

type jarList struct {
	Verbose bool   `splitarg:"-v,help=print extra detail"`
	File    string `splitarg:"file,help=archive path to list"`
}

func newRunCmd() *cobra.Command {
	var (
		includeFile bool
		shellLine   string
	)

	cmd := &cobra.Command{
		Use:                "run [flags] <service> [-- args...]",
		Short:              "Split argv against the deploy-style demo schema and print the result",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			toks := args

			if shellLine != "" {
				split, err := preprocess.ShellLine(shellLine)
				if err != nil {
					return err
				}

				toks = split
			}

			if includeFile {
				expanded, err := preprocess.ExpandIncludes(os.DirFS("."), toks)
				if err != nil {
					return err
				}

				toks = expanded
			}

			return splitAndPrint(cmd, toks)
		},
	}

	cmd.Flags().BoolVar(&includeFile, "expand-includes", false, "expand @file tokens against the current directory before splitting")
	cmd.Flags().StringVar(&shellLine, "shell-line", "", "split this shell-quoted line instead of the command's own args")

	return cmd
}

func splitAndPrint(cmd *cobra.Command, toks []string) error {
	s, err := derive.Build[deployArgs]()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}

	sp := splitter.FromSchema[deployArgs](s).WithPreprocessFlat(preprocess.TrimEmpty)

	got, err := sp.Split(toks)
	if err != nil {
		return err
	}

	env := "staging"
	if got.Env != nil {
		env = *got.Env
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"verbose=%v env=%s tags=%v service=%q rest=%v\n",
		got.Verbose, env, got.Tag, got.Service, got.Rest)

	return nil
}

func newJarCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "jar <create|list> [flags] <file> [inputs...]",
		Short:              "Split argv against the branch-style demo schema and print the result",
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := derive.Build[jarArgs]()
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}

			sp := splitter.FromSchema[jarArgs](s)

			got, err := sp.Split(args)
			if err != nil {
				return err
			}

			switch {
			case got.Create != nil:
				fmt.Fprintf(cmd.OutOrStdout(), "create verbose=%v file=%q inputs=%v\n",
					got.Create.Verbose, got.Create.File, got.Create.Inputs)
			case got.List != nil:
				fmt.Fprintf(cmd.OutOrStdout(), "list verbose=%v file=%q\n",
					got.List.Verbose, got.List.File)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "no branch selected")
			}

			return nil
		},
	}
}
