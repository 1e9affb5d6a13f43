// Package helptext renders a [schema.Schema] into the two-column usage
// block a CLI's --help flag prints: names on the left, help text on the
// right, in declaration order. It is a pure formatter with no knowledge of
// the splitter or any particular command's wiring.
package helptext

import (
	"fmt"
	"strings"

	"go.jacobcolvin.com/splitarg/internal/stringtest"
	"go.jacobcolvin.com/splitarg/schema"
)

// Render walks s.Options() in declaration order and renders one line per
// option: its names joined by ", ", padded to the widest name column, then
// its help text (or a bracketed kind annotation if no help was set). A
// Branch option's nested schema is rendered as an indented sub-block
// beneath it.
func Render(s *schema.Schema) string {
	if s == nil {
		return ""
	}

	return stringtest.JoinLF(renderSchema(s, 0)...)
}

// renderSchema computes the name-column width for one schema level
// independently of its parent, so a deeply nested Branch's short option
// names don't inherit padding sized for an unrelated sibling.
func renderSchema(s *schema.Schema, depth int) []string {
	opts := s.Options()
	if len(opts) == 0 {
		return nil
	}

	width := 0

	for _, o := range opts {
		if n := len(strings.Join(o.Names(), ", ")); n > width {
			width = n
		}
	}

	var lines []string

	for _, o := range opts {
		lines = append(lines, renderOption(o, width, depth)...)
	}

	return lines
}

func renderOption(o schema.Option, width, depth int) []string {
	indent := strings.Repeat("  ", depth)
	names := strings.Join(o.Names(), ", ")
	help := o.HelpText()

	if help == "" {
		help = fmt.Sprintf("[%s]", o.Kind())
	}

	lines := []string{fmt.Sprintf("%s%-*s  %s", indent, width, names, help)}

	if nested := o.NestedSchema(); nested != nil {
		lines = append(lines, renderSchema(nested, depth+1)...)
	}

	return lines
}
