package splitter

import (
	"fmt"

	"go.jacobcolvin.com/splitarg/schema"
)

// Kind enumerates the ways a split can fail, per spec.md §7. It is a flat
// enumeration — no error wraps another error kind.
type Kind int

const (
	// KindMissingRequired: input ended with unfilled Required option(s).
	KindMissingRequired Kind = iota
	// KindMissingArgument: a Single/Repeatable name matched but no
	// following value token exists.
	KindMissingArgument
	// KindUnhandledArguments: leftover tokens after all options are
	// satisfied and no Varargs is present (top-level splits only).
	KindUnhandledArguments
	// KindExtraArguments: tokens remained after a Branch returned.
	KindExtraArguments
	// KindConverterFailed: the option's converter returned an error.
	KindConverterFailed
)

func (k Kind) String() string {
	switch k {
	case KindMissingRequired:
		return "missing-required"
	case KindMissingArgument:
		return "missing-argument"
	case KindUnhandledArguments:
		return "unhandled-arguments"
	case KindExtraArguments:
		return "extra-arguments"
	case KindConverterFailed:
		return "converter-failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single structured value every terminal splitting failure
// produces. It never wraps a cause other than a ConverterFailed's — the
// grammar is unambiguous enough that no other kind needs one.
type Error struct {
	Kind    Kind
	Message string
	// Option identifies the offending option, when one is implicated.
	// Its zero value (Kind() == schema.KindFlag with no names) means "no
	// specific option" — check OptionSet before reading it.
	Option    schema.Option
	OptionSet bool
	Cause     error
}

func (e *Error) Error() string {
	if e.OptionSet {
		return fmt.Sprintf("splitarg: %s: %s (option %q)", e.Kind, e.Message, e.Option.PrimaryName())
	}

	return fmt.Sprintf("splitarg: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func missingRequiredErr(o schema.Option) *Error {
	return &Error{
		Kind:      KindMissingRequired,
		Message:   "end of input with unfilled required option",
		Option:    o,
		OptionSet: true,
	}
}

func missingArgumentErr(o schema.Option) *Error {
	return &Error{
		Kind:      KindMissingArgument,
		Message:   "no value token followed this option",
		Option:    o,
		OptionSet: true,
	}
}

func unhandledArgumentsErr(rest []string) *Error {
	return &Error{
		Kind:    KindUnhandledArguments,
		Message: fmt.Sprintf("leftover arguments with no varargs to absorb them: %v", rest),
	}
}

func extraArgumentsErr(o schema.Option, rest []string) *Error {
	return &Error{
		Kind:      KindExtraArguments,
		Message:   fmt.Sprintf("arguments remained after branch returned: %v", rest),
		Option:    o,
		OptionSet: true,
	}
}

func converterFailedErr(o schema.Option, cause error) *Error {
	return &Error{
		Kind:      KindConverterFailed,
		Message:   cause.Error(),
		Option:    o,
		OptionSet: true,
		Cause:     cause,
	}
}
