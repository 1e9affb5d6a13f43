// Package splitter implements the argument-stream splitter state machine:
// the part of splitarg that consumes an ordered token stream against a
// [schema.Schema] and produces the caller's aggregate.
package splitter

import (
	"fmt"
	"regexp"
	"strings"

	"go.jacobcolvin.com/splitarg/schema"
)

// Splitter consumes token streams against a fixed Schema and decodes them
// into T. Build one with FromSchema; Splitter is immutable, so
// WithPreprocessEach/WithPreprocessFlat return a new Splitter rather than
// mutating the receiver.
type Splitter[T any] struct {
	schema *schema.Schema
	pre    []func([]string) []string
}

// FromSchema is the only mandatory factory: a Splitter over s with no
// pre-processors installed.
func FromSchema[T any](s *schema.Schema) *Splitter[T] {
	return &Splitter[T]{schema: s}
}

// WithPreprocessEach returns a new Splitter that maps fn over every token
// before splitting.
func (s *Splitter[T]) WithPreprocessEach(fn func(string) string) *Splitter[T] {
	return s.WithPreprocessFlat(func(tok string) []string {
		return []string{fn(tok)}
	})
}

// WithPreprocessFlat returns a new Splitter that replaces every token with
// zero or more tokens produced by fn, applied left to right across the
// stream before splitting.
func (s *Splitter[T]) WithPreprocessFlat(fn func(string) []string) *Splitter[T] {
	ns := &Splitter[T]{
		schema: s.schema,
		pre:    append(append([]func([]string) []string(nil), s.pre...), expand(fn)),
	}

	return ns
}

func expand(fn func(string) []string) func([]string) []string {
	return func(toks []string) []string {
		out := make([]string, 0, len(toks))
		for _, t := range toks {
			out = append(out, fn(t)...)
		}

		return out
	}
}

// Split consumes tokens against the Splitter's Schema and returns the
// decoded aggregate, or a *Error describing why splitting failed.
func (s *Splitter[T]) Split(tokens []string) (T, error) {
	var zero T

	toks := append([]string(nil), tokens...)
	for _, p := range s.pre {
		toks = p(toks)
	}

	v, err := runSplit(s.schema, newTokenStream(toks), false)
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("splitarg: finalizer produced %T, want %T", v, zero)
	}

	return t, nil
}

func splitEq(tok string) (head, tail string, hasEq bool) {
	parts := strings.SplitN(tok, "=", 2)
	if len(parts) == 2 {
		return parts[0], parts[1], true
	}

	return tok, "", false
}

// unquote strips one pair of surrounding ASCII double quotes from a
// name=value tail. It is never applied to a stand-alone token.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}

	return s
}

func parseBoolLenient(s string) bool {
	return strings.EqualFold(s, "true")
}

func countFlags(opts []schema.Option) int {
	n := 0

	for _, o := range opts {
		if o.Kind() == schema.KindFlag {
			n++
		}
	}

	return n
}

func buildFlagRegex(nFlags int) *regexp.Regexp {
	if nFlags == 0 {
		return nil
	}

	return regexp.MustCompile(fmt.Sprintf(`^-[A-Za-z]{1,%d}$`, nFlags))
}

func clusterIsAllFlags(s *schema.Schema, tok string) ([]int, bool) {
	letters := tok[1:]
	idxs := make([]int, 0, len(letters))

	for _, ch := range letters {
		opt, idx, ok := s.ByName("-" + string(ch))
		if !ok || opt.Kind() != schema.KindFlag {
			return nil, false
		}

		idxs = append(idxs, idx)
	}

	return idxs, true
}

func requiredQueue(opts []schema.Option) []int {
	var q []int

	for i, o := range opts {
		if o.Kind() == schema.KindRequired {
			q = append(q, i)
		}
	}

	return q
}

func varargsIndex(opts []schema.Option) (int, bool) {
	for i, o := range opts {
		if o.Kind() == schema.KindVarargs {
			return i, true
		}
	}

	return 0, false
}

// runSplit is the state machine of spec.md §4.4. nested is true when this
// call is splitting a nested Single/Repeatable's sub-schema, which changes
// step 7's behavior (return immediately vs. drain varargs or fail with
// UnhandledArguments). A Branch's sub-schema is split with nested false.
func runSplit(s *schema.Schema, ts *tokenStream, nested bool) (any, error) {
	opts := s.Options()
	ws := newWorkspace(opts)
	required := requiredQueue(opts)
	flagRe := buildFlagRegex(countFlags(opts))
	doubleDash := false

	for !ts.empty() {
		t := ts.pop()

		if !doubleDash && t == "--" {
			doubleDash = true
			continue
		}

		head, tail, hasEq := splitEq(t)

		if !doubleDash {
			if opt, idx, ok := s.ByName(head); ok {
				agg, done, err := applyNamed(s, ws, opt, idx, tail, hasEq, ts)
				if err != nil {
					return nil, err
				}

				if done {
					return agg, nil
				}

				continue
			}

			if flagRe != nil && flagRe.MatchString(t) {
				if idxs, ok := clusterIsAllFlags(s, t); ok {
					for _, idx := range idxs {
						ws.setFlag(idx, true)
					}

					continue
				}
			}
		}

		if len(required) > 0 {
			idx := required[0]
			required = required[1:]
			ws.setRequired(idx, t)

			continue
		}

		ts.pushBack()

		if nested {
			return ws.finalize(s)
		}

		if vIdx, ok := varargsIndex(opts); ok {
			rest := ts.drainAll()
			items := make([]any, len(rest))

			for i, r := range rest {
				items[i] = r
			}

			ws.append(vIdx, items...)

			return ws.finalize(s)
		}

		return nil, unhandledArgumentsErr(ts.rest())
	}

	if len(required) > 0 {
		return nil, missingRequiredErr(opts[required[0]])
	}

	return ws.finalize(s)
}

// applyNamed handles step 4 of the main loop for a token that matched a
// non-positional option by name. done is true when the match (a Branch)
// terminates the whole split immediately.
func applyNamed(
	s *schema.Schema, ws *workspace, opt schema.Option, idx int, tail string, hasEq bool, ts *tokenStream,
) (agg any, done bool, err error) {
	switch opt.Kind() {
	case schema.KindBranch:
		sub := opt.NestedSchema()

		// A Branch's sub-schema consumes the rest of the stream, so it runs
		// in top-level mode: a Varargs in it absorbs the remaining tokens.
		// Leftovers it cannot absorb are reported against the Branch.
		val, err := runSplit(sub, ts, false)
		if err != nil {
			if se, ok := err.(*Error); ok && se.Kind == KindUnhandledArguments {
				return nil, false, extraArgumentsErr(opt, ts.rest())
			}

			return nil, false, err
		}

		if !ts.empty() {
			return nil, false, extraArgumentsErr(opt, ts.rest())
		}

		ws.setOptional(idx, val)

		agg, err := ws.finalize(s)
		if err != nil {
			return nil, false, err
		}

		return agg, true, nil

	case schema.KindFlag:
		if hasEq {
			ws.setFlag(idx, parseBoolLenient(unquote(tail)))
		} else {
			ws.setFlag(idx, true)
		}

		return nil, false, nil

	case schema.KindSingle:
		if opt.NestedSchema() != nil {
			val, err := runSplit(opt.NestedSchema(), ts, true)
			if err != nil {
				return nil, false, err
			}

			ws.setOptional(idx, val)

			return nil, false, nil
		}

		var value string

		if hasEq {
			// Open question (spec.md §9) resolved: an empty tail after
			// "=" is present-with-empty-string, not MissingArgument —
			// "=" always means a value was supplied, even an empty one.
			value = unquote(tail)
		} else {
			if ts.empty() {
				return nil, false, missingArgumentErr(opt)
			}

			value = ts.pop()
		}

		ws.setOptional(idx, value)

		return nil, false, nil

	case schema.KindRepeatable:
		if opt.NestedSchema() != nil {
			val, err := runSplit(opt.NestedSchema(), ts, true)
			if err != nil {
				return nil, false, err
			}

			ws.append(idx, val)

			return nil, false, nil
		}

		if hasEq {
			parts := strings.Split(unquote(tail), ",")
			items := make([]any, len(parts))

			for i, p := range parts {
				items[i] = p
			}

			ws.append(idx, items...)
		} else {
			if ts.empty() {
				return nil, false, missingArgumentErr(opt)
			}

			ws.append(idx, ts.pop())
		}

		return nil, false, nil

	default:
		return nil, false, fmt.Errorf("%w: positional option %q matched by name", schema.ErrInvalidSchema, opt.PrimaryName())
	}
}
