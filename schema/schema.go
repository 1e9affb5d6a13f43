// Package schema describes the option algebra and the immutable schema that
// a [Splitter] consumes.
//
// Option and Schema are mutually recursive (a Branch/Single/Repeatable
// option may carry a reference to a nested Schema, and a Schema holds an
// ordered list of Options), so both live in this one package rather than
// being artificially split across packages that would otherwise need to
// import each other.
package schema

import (
	"errors"
	"fmt"

	reflect "github.com/goccy/go-reflect"
)

// ErrInvalidSchema is the sentinel wrapped by every construction-time
// failure: an empty schema, a duplicate name, more than one Varargs option,
// a Required option declared after a Varargs, an option with no names or
// duplicate names, help set twice, or a nested schema set twice.
var ErrInvalidSchema = errors.New("invalid schema")

// Kind is the closed set of option variants spec.md §3 defines.
type Kind int

const (
	// KindFlag toggles a boolean; defaults to false.
	KindFlag Kind = iota
	// KindSingle accepts zero-or-one key/value; defaults to absent.
	KindSingle
	// KindRepeatable accepts zero-or-more key/values, merged in order;
	// defaults to an empty sequence.
	KindRepeatable
	// KindRequired consumes exactly one positional token; absence is a
	// splitting error, not a default.
	KindRequired
	// KindVarargs consumes all remaining positionals; defaults to an
	// empty sequence.
	KindVarargs
	// KindBranch switches to a nested Schema that consumes the rest of
	// the token stream; defaults to absent.
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindSingle:
		return "single"
	case KindRepeatable:
		return "repeatable"
	case KindRequired:
		return "required"
	case KindVarargs:
		return "varargs"
	case KindBranch:
		return "branch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Optional is the raw container a Single or Branch slot holds before its
// converter runs. Value is a string for a plain Single; for a Single or
// Branch carrying a NestedSchema, Value is the nested aggregate produced by
// that schema's finalizer.
type Optional struct {
	Present bool
	Value   any
}

// RawConverter maps a slot's raw container to a user-facing value. It is
// built up by Of, Convert, ConvertDyn, and WithDefault and invoked exactly once per
// option, at finalization.
type RawConverter func(raw any) (any, error)

// Option is one immutable schema slot. Build one with Of and refine it with
// WithHelp, WithDefault, WithNested, and the package-level Convert function;
// each returns a fresh Option rather than mutating the receiver.
type Option struct {
	kind      Kind
	names     []string
	help      string
	nested    *Schema
	converter RawConverter
}

// Of constructs an Option of the given kind with one or more lookup names.
// Names must be non-empty and pairwise unique within the option. The
// returned Option carries the kind's built-in identity converter (no help,
// no default, no nested schema).
func Of(kind Kind, names ...string) (Option, error) {
	if len(names) == 0 {
		return Option{}, fmt.Errorf("%w: option of kind %s has no names", ErrInvalidSchema, kind)
	}

	seen := make(map[string]bool, len(names))

	for _, n := range names {
		if n == "" {
			return Option{}, fmt.Errorf("%w: option of kind %s has an empty name", ErrInvalidSchema, kind)
		}

		if seen[n] {
			return Option{}, fmt.Errorf("%w: option of kind %s repeats name %q", ErrInvalidSchema, kind, n)
		}

		seen[n] = true
	}

	o := Option{
		kind:  kind,
		names: append([]string(nil), names...),
	}
	o.converter = func(raw any) (any, error) {
		return decodeRaw(o.kind, o.nested != nil, raw)
	}

	return o, nil
}

func (o Option) clone() Option {
	c := o
	c.names = append([]string(nil), o.names...)

	return c
}

// Kind returns the option's variant.
func (o Option) Kind() Kind { return o.kind }

// Names returns the option's lookup names in declaration order.
func (o Option) Names() []string { return append([]string(nil), o.names...) }

// PrimaryName returns the first declared name, used as the map key by
// NewMap's finalizer and in error messages that identify an option.
func (o Option) PrimaryName() string { return o.names[0] }

// HelpText returns the option's help string, or "" if unset.
func (o Option) HelpText() string { return o.help }

// NestedSchema returns the option's nested schema, or nil.
func (o Option) NestedSchema() *Schema { return o.nested }

// WithHelp returns a fresh Option with help text attached. Fails with
// ErrInvalidSchema if help was already set.
func (o Option) WithHelp(text string) (Option, error) {
	if o.help != "" {
		return Option{}, fmt.Errorf("%w: help already set for option %q", ErrInvalidSchema, o.PrimaryName())
	}

	c := o.clone()
	c.help = text

	return c, nil
}

// WithNested returns a fresh Option carrying a nested schema reference.
// Valid only for Single, Repeatable, and Branch kinds; fails with
// ErrInvalidSchema if a nested schema was already set or the kind can't
// carry one.
func (o Option) WithNested(s *Schema) (Option, error) {
	switch o.kind {
	case KindSingle, KindRepeatable, KindBranch:
	default:
		return Option{}, fmt.Errorf("%w: kind %s cannot carry a nested schema", ErrInvalidSchema, o.kind)
	}

	if o.nested != nil {
		return Option{}, fmt.Errorf("%w: nested schema already set for option %q", ErrInvalidSchema, o.PrimaryName())
	}

	if s == nil {
		return Option{}, fmt.Errorf("%w: nil nested schema for option %q", ErrInvalidSchema, o.PrimaryName())
	}

	c := o.clone()
	c.nested = s
	// Re-anchor the identity converter so it sees the nested flag through
	// the new value, not the pre-nested closure captured by Of.
	c.converter = func(raw any) (any, error) {
		return decodeRaw(c.kind, true, raw)
	}

	return c, nil
}

// WithDefault returns a fresh Option whose converter substitutes v whenever
// the prior converter's result is the kind's empty value (false, a nil
// pointer, or a zero-length sequence). It superimposes on, rather than
// replaces, the kind's built-in default.
func (o Option) WithDefault(v any) Option {
	base := o.converter
	c := o.clone()
	c.converter = func(raw any) (any, error) {
		val, err := base(raw)
		if err != nil {
			return nil, err
		}

		if isEmptyValue(val) {
			return v, nil
		}

		return val, nil
	}

	return c
}

// Apply runs the option's full converter chain over a slot's raw value.
func (o Option) Apply(raw any) (any, error) {
	return o.converter(raw)
}

// Convert returns a fresh Option whose converter post-composes fn over the
// decoded container shape: a Flag's fn maps bool to Out, a Single/Branch's
// fn maps In to Out pointwise under the pointer, a Repeatable/Varargs's fn
// maps In to Out per element, and a Required's fn maps the positional value
// directly. The pointer shape of a Single/Branch and the slice shape of a
// Repeatable/Varargs are preserved, so only the element type changes; a
// Flag's or Required's fn result is returned as it is.
//
// The shape match between the option's current decoded value and In is
// checked dynamically (Go generics can't express "the container shape
// implied by this Option's Kind" at compile time without a generic Option
// type, which would prevent Schema from holding a single heterogeneous
// option list).
func Convert[In, Out any](o Option, fn func(In) (Out, error)) Option {
	base := o.converter
	c := o.clone()
	c.converter = func(raw any) (any, error) {
		val, err := base(raw)
		if err != nil {
			return nil, err
		}

		return convertShape(o.kind, val, fn)
	}

	return c
}

func convertShape[In, Out any](kind Kind, v any, fn func(In) (Out, error)) (any, error) {
	switch kind {
	case KindFlag:
		in, ok := v.(In)
		if !ok {
			return nil, shapeError(kind, v, in)
		}

		return fn(in)

	case KindRequired:
		in, ok := v.(In)
		if !ok {
			return nil, shapeError(kind, v, in)
		}

		return fn(in)

	case KindSingle, KindBranch:
		p, ok := v.(*In)
		if !ok {
			return nil, shapeError(kind, v, p)
		}

		if p == nil {
			return (*Out)(nil), nil
		}

		out, err := fn(*p)
		if err != nil {
			return nil, err
		}

		return &out, nil

	case KindRepeatable, KindVarargs:
		ins, ok := v.([]In)
		if !ok {
			return nil, shapeError(kind, v, ins)
		}

		outs := make([]Out, len(ins))

		for i, e := range ins {
			out, err := fn(e)
			if err != nil {
				return nil, err
			}

			outs[i] = out
		}

		return outs, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrInvalidSchema, kind)
	}
}

// ConvertDyn is the reflection-driven counterpart to Convert for callers,
// such as derive.Build, that only know the element type as a runtime
// reflect.Type rather than as a compile-time type parameter. It applies to
// Required, Single, Repeatable, and Varargs slots only — a Branch's raw
// value is already the nested schema's finalized aggregate and needs no
// further element conversion.
func ConvertDyn(o Option, outType reflect.Type, fn func(any) (any, error)) Option {
	base := o.converter
	c := o.clone()
	c.converter = func(raw any) (any, error) {
		val, err := base(raw)
		if err != nil {
			return nil, err
		}

		return convertShapeDyn(o.kind, val, outType, fn)
	}

	return c
}

func convertShapeDyn(kind Kind, v any, outType reflect.Type, fn func(any) (any, error)) (any, error) {
	switch kind {
	case KindRequired:
		return fn(v)

	case KindSingle:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return reflect.Zero(reflect.PointerTo(outType)).Interface(), nil
		}

		out, err := fn(rv.Elem().Interface())
		if err != nil {
			return nil, err
		}

		p := reflect.New(outType)
		p.Elem().Set(reflect.ValueOf(out))

		return p.Interface(), nil

	case KindRepeatable, KindVarargs:
		rv := reflect.ValueOf(v)
		out := reflect.MakeSlice(reflect.SliceOf(outType), rv.Len(), rv.Len())

		for i := 0; i < rv.Len(); i++ {
			ov, err := fn(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}

			out.Index(i).Set(reflect.ValueOf(ov))
		}

		return out.Interface(), nil

	default:
		return nil, fmt.Errorf("%w: kind %s cannot carry an element converter", ErrInvalidSchema, kind)
	}
}

func shapeError(kind Kind, v, want any) error {
	return fmt.Errorf("%w: option of kind %s holds %T, converter expected %T", ErrInvalidSchema, kind, v, want)
}

// decodeRaw is the identity converter installed by Of: it turns the raw
// workspace container (schema.Optional, []any, bool, or string) into the
// idiomatic Go shape every subsequent Convert call builds on: bool for
// Flag, *string (or *any when nested) for Single/Branch, []string (or
// []any when nested) for Repeatable/Varargs, and string for Required.
func decodeRaw(kind Kind, nested bool, raw any) (any, error) {
	switch kind {
	case KindFlag:
		b, _ := raw.(bool)
		return b, nil

	case KindRequired:
		s, _ := raw.(string)
		return s, nil

	case KindSingle, KindBranch:
		opt, _ := raw.(Optional)
		if !opt.Present {
			if nested {
				return (*any)(nil), nil
			}

			return (*string)(nil), nil
		}

		if nested {
			v := opt.Value
			return &v, nil
		}

		s, _ := opt.Value.(string)

		return &s, nil

	case KindRepeatable, KindVarargs:
		items, _ := raw.([]any)
		if nested {
			out := append([]any(nil), items...)
			return out, nil
		}

		out := make([]string, len(items))
		for i, it := range items {
			out[i], _ = it.(string)
		}

		return out, nil

	default:
		return raw, nil
	}
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

// Finalizer turns the ordered list of converted option values into the
// caller's aggregate. It is invoked exactly once per successful split.
type Finalizer func(values []any) any

// Schema is an immutable, ordered list of Options plus a Finalizer.
// Construct one with New; it is safe for concurrent read and freely
// shareable across splits.
type Schema struct {
	options   []Option
	byName    map[string]int
	finalizer Finalizer
}

// New validates options against invariants (a)-(d) of spec.md §4.2 and
// returns an immutable Schema. Invariants:
//
//	(a) at least one option;
//	(b) no two options in the schema share a name;
//	(c) at most one Varargs option;
//	(d) if a Varargs exists, no Required option may follow it.
func New(finalizer Finalizer, options ...Option) (*Schema, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: schema must declare at least one option", ErrInvalidSchema)
	}

	seen := make(map[string]string, len(options))
	varargsSeen := false

	for _, o := range options {
		for _, n := range o.names {
			if owner, ok := seen[n]; ok {
				return nil, fmt.Errorf("%w: name %q used by both %q and %q", ErrInvalidSchema, n, owner, o.PrimaryName())
			}

			seen[n] = o.PrimaryName()
		}

		switch o.kind {
		case KindVarargs:
			if varargsSeen {
				return nil, fmt.Errorf("%w: more than one varargs option (%q)", ErrInvalidSchema, o.PrimaryName())
			}

			varargsSeen = true

		case KindRequired:
			if varargsSeen {
				return nil, fmt.Errorf("%w: required option %q declared after varargs", ErrInvalidSchema, o.PrimaryName())
			}
		}
	}

	byName := make(map[string]int, len(options))

	for i, o := range options {
		if o.kind == KindRequired || o.kind == KindVarargs {
			continue
		}

		for _, n := range o.names {
			byName[n] = i
		}
	}

	return &Schema{
		options:   append([]Option(nil), options...),
		byName:    byName,
		finalizer: finalizer,
	}, nil
}

// NewMap is a convenience constructor that finalizes into a
// map[string]any keyed by each option's PrimaryName — the "generic map
// from option to value" aggregate shape spec.md's Purpose section allows
// as an alternative to a user-declared data-carrier.
func NewMap(options ...Option) (*Schema, error) {
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.PrimaryName()
	}

	finalize := func(values []any) any {
		m := make(map[string]any, len(values))
		for i, v := range values {
			m[names[i]] = v
		}

		return m
	}

	return New(finalize, options...)
}

// Options returns the schema's options in declaration order.
func (s *Schema) Options() []Option { return append([]Option(nil), s.options...) }

// ByName looks up a non-positional option by exact name. Positional options
// (Required, Varargs) are never found here — their names are identifiers,
// not lookup keys, per spec.md invariant 5.
func (s *Schema) ByName(name string) (Option, int, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Option{}, -1, false
	}

	return s.options[i], i, true
}

// Finalize invokes the schema's finalizer over converted option values.
func (s *Schema) Finalize(values []any) any { return s.finalizer(values) }
