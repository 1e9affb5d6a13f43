// Package preprocess collects the stream-to-stream token transforms the
// core splitter package treats as external collaborators. It never shells
// out; [IncludeFile] reads files only through the fs.FS its caller passes
// in. [TrimEmpty] can be chained in via
// [splitter.Splitter.WithPreprocessFlat]; the include transform, which can
// fail, is applied to the token stream before it reaches the splitter.
package preprocess

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/shlex"
)

// ErrRecursiveInclude is returned by the function [IncludeFile] builds when
// an included file contains a line that itself begins with a single "@".
var ErrRecursiveInclude = errors.New("preprocess: included file may not itself use @file")

// TrimEmpty drops a token that is empty or all whitespace, leaving every
// other token untouched. Pass it to WithPreprocessFlat to prune blank
// entries a shell-line split or a file include can leave behind.
func TrimEmpty(tok string) []string {
	if strings.TrimSpace(tok) == "" {
		return nil
	}

	return []string{tok}
}

// IncludeFile returns a token transform implementing the `@file` include
// contract: a token beginning with a single "@" is replaced by the
// non-blank, non-"#"-prefixed lines of the file named by the rest of the
// token, read from fsys. A token beginning with "@@" has one "@" stripped
// and is passed through as-is, with no file access. Any other token is
// returned unchanged.
//
// The returned function carries an error return, unlike
// [splitter.Splitter.WithPreprocessFlat]'s plain func(string) []string, so
// a caller expanding a raw argv applies it token-by-token itself (a
// missing file or a recursive `@file` line must fail the expansion, not
// silently vanish into an empty token stream) and feeds the resulting
// flat slice into the splitter once expansion succeeds in full.
//
// A line read from the included file that itself begins with a single "@"
// is a recursion error: IncludeFile does not expand includes transitively,
// and reports the violation instead of silently swallowing or re-expanding
// it.
func IncludeFile(fsys fs.FS) func(string) ([]string, error) {
	return func(tok string) ([]string, error) {
		if !strings.HasPrefix(tok, "@") {
			return []string{tok}, nil
		}

		if strings.HasPrefix(tok, "@@") {
			return []string{tok[1:]}, nil
		}

		return readIncludeLines(fsys, tok[1:])
	}
}

// ExpandIncludes applies an IncludeFile transform across a whole token
// stream, in order, stopping at the first error.
func ExpandIncludes(fsys fs.FS, toks []string) ([]string, error) {
	expand := IncludeFile(fsys)

	var out []string

	for _, tok := range toks {
		expanded, err := expand(tok)
		if err != nil {
			return nil, err
		}

		out = append(out, expanded...)
	}

	return out, nil
}

func readIncludeLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("preprocess: open %s: %w", name, err)
	}
	defer f.Close()

	var lines []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "@@"):
			lines = append(lines, line[1:])
		case strings.HasPrefix(line, "@"):
			return nil, fmt.Errorf("%w: %s", ErrRecursiveInclude, name)
		default:
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("preprocess: read %s: %w", name, err)
	}

	return lines, nil
}

// ShellLine splits one shell-quoted config line into tokens the way a
// shell's own word-splitting would, honoring single and double quotes and
// backslash escapes. It is meant for a config-file or REPL front end that
// hands the core splitter a single line of text rather than an already
// tokenized argv.
func ShellLine(line string) ([]string, error) {
	toks, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("preprocess: split shell line: %w", err)
	}

	return toks, nil
}
