// Package stringtest holds small string helpers shared by this repo's
// golden-output tests: joining expected multi-line output with an explicit
// line ending, and dedenting an indented raw string literal used as a test
// fixture.
package stringtest

import "strings"

// Input dedents a raw string literal used as test input or expected
// output: it strips exactly one leading and one trailing newline (so a
// fixture can start and end on its own line without forcing every line to
// shift), then removes the minimum common leading whitespace from every
// non-blank line. Whitespace-only lines are collapsed to empty.
//
// Example:
//
//	stringtest.Input(`
//	    -v       enable verbose output
//	    --env    target environment
//	`) // -> "-v       enable verbose output\n--env    target environment"
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")

	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if n := leadingWhitespace(line); indent == -1 || n < indent {
			indent = n
		}
	}

	if indent < 0 {
		indent = 0
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}

		if len(line) >= indent {
			lines[i] = line[indent:]
		}
	}

	return strings.Join(lines, "\n")
}

func leadingWhitespace(s string) int {
	n := 0

	for _, r := range s {
		if r != ' ' && r != '\t' {
			break
		}

		n++
	}

	return n
}

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\nline2\nline3"
func JoinLF(ss ...string) string {
	var sb strings.Builder

	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}

// JoinCRLF joins multiple strings with CRLF line endings.
// Use this to construct expected test output with explicit line endings on
// Windows.
//
// Example:
//
//	want := stringtest.JoinCRLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\r\nline2\r\nline3"
func JoinCRLF(ss ...string) string {
	var sb strings.Builder

	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\r')
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}
