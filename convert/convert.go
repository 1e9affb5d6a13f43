// Package convert implements the Converter / ConverterResolver lookup of
// spec.md §4.3: a composable way to go from a raw decoded value to the
// typed value an [schema.Option]'s Convert expects, without the caller
// having to write a conversion function for every ordinary type by hand.
package convert

import (
	"errors"
	"fmt"

	reflect "github.com/goccy/go-reflect"
)

// ErrNoConverter is the sentinel a [DynConverter] (or a converter built by
// [Of] or [Resolve]) returns, wrapped, when the value it is handed, or the
// value it produced, has a type it cannot convert. A [Resolver] with no
// converter for a type does not return it: it reports false, and Or falls
// through to the next resolver.
var ErrNoConverter = errors.New("convert: no converter for type")

// Converter is a pure function from A to B that may fail. AndThen and
// Compose build new Converters out of existing ones without mutating
// either side.
type Converter[A, B any] func(A) (B, error)

// AndThen returns a Converter that runs c, then feeds its result through
// next.
func AndThen[A, B, C any](c Converter[A, B], next Converter[B, C]) Converter[A, C] {
	return func(a A) (C, error) {
		var zero C

		b, err := c(a)
		if err != nil {
			return zero, err
		}

		return next(b)
	}
}

// Compose is AndThen with its arguments reversed: Compose(g, f) runs f then
// g, matching mathematical composition order (g ∘ f).
func Compose[A, B, C any](next Converter[B, C], c Converter[A, B]) Converter[A, C] {
	return AndThen(c, next)
}

// DynConverter is the type-erased form of Converter a [Resolver] hands
// back: it still only knows how to map one concrete input shape to one
// concrete output type, but it no longer carries A and B as Go type
// parameters, so resolvers for arbitrary runtime types can be composed in
// an ordinary slice or map.
type DynConverter func(raw any) (any, error)

// Of adapts a strongly-typed Converter into a DynConverter, checking raw's
// dynamic type against A at the call boundary.
func Of[A, B any](c Converter[A, B]) DynConverter {
	return func(raw any) (any, error) {
		a, ok := raw.(A)
		if !ok {
			var zero A
			return nil, fmt.Errorf("%w: got %T, want %T", ErrNoConverter, raw, zero)
		}

		return c(a)
	}
}

// Resolver answers "can you convert a raw value to target?" for some
// reflect.Type target, returning a DynConverter if so. Resolvers are pure
// lookup functions; they carry no mutable state.
type Resolver func(target reflect.Type) (DynConverter, bool)

// Or tries r first; if r has no converter for target, it falls through to
// next. This is spec.md §4.3's "or" combinator.
func Or(r, next Resolver) Resolver {
	return func(target reflect.Type) (DynConverter, bool) {
		if c, ok := r(target); ok {
			return c, true
		}

		return next(target)
	}
}

// OrAll folds Or over a list of resolvers, trying each in order.
func OrAll(resolvers ...Resolver) Resolver {
	return func(target reflect.Type) (DynConverter, bool) {
		for _, r := range resolvers {
			if c, ok := r(target); ok {
				return c, true
			}
		}

		return nil, false
	}
}

// When restricts r to targets for which predicate returns true, falling
// through to "no converter" otherwise. This is spec.md §4.3's "when
// (predicate, converter)" combinator, generalized to wrap any Resolver
// rather than just one converter.
func When(predicate func(reflect.Type) bool, r Resolver) Resolver {
	return func(target reflect.Type) (DynConverter, bool) {
		if !predicate(target) {
			return nil, false
		}

		return r(target)
	}
}

// WhenType restricts r to exactly one target type, the spec's
// "when(classExact, converter)" shortcut.
func WhenType(exact reflect.Type, r Resolver) Resolver {
	return When(func(t reflect.Type) bool { return t == exact }, r)
}

// Unwrap lifts r so it also resolves *E, []E, and [N]E whenever r resolves
// E itself: a Single's raw *string becomes *Out by mapping the converter
// over the pointer, and a Repeatable/Varargs's raw []string becomes []Out
// by mapping per element. This is spec.md §4.3's "unwrap" combinator —
// container types are peeled one layer at a time, so Unwrap(Unwrap(r)) also
// handles *[]E.
func Unwrap(r Resolver) Resolver {
	var unwrapped Resolver

	unwrapped = func(target reflect.Type) (DynConverter, bool) {
		switch target.Kind() {
		case reflect.Ptr:
			elem := target.Elem()

			inner, ok := OrAll(r, unwrapped)(elem)
			if !ok {
				return nil, false
			}

			return func(raw any) (any, error) {
				rv := reflect.ValueOf(raw)
				if rv.Kind() != reflect.Ptr || rv.IsNil() {
					return reflect.Zero(target).Interface(), nil
				}

				out, err := inner(rv.Elem().Interface())
				if err != nil {
					return nil, err
				}

				outPtr := reflect.New(elem)
				outPtr.Elem().Set(reflect.ValueOf(out))

				return outPtr.Interface(), nil
			}, true

		case reflect.Slice, reflect.Array:
			elem := target.Elem()

			inner, ok := OrAll(r, unwrapped)(elem)
			if !ok {
				return nil, false
			}

			return func(raw any) (any, error) {
				rv := reflect.ValueOf(raw)

				var out reflect.Value

				if target.Kind() == reflect.Array {
					if rv.Len() != target.Len() {
						return nil, fmt.Errorf("%w: %d elements for %s", ErrNoConverter, rv.Len(), target)
					}

					out = reflect.New(target).Elem()
				} else {
					out = reflect.MakeSlice(reflect.SliceOf(elem), rv.Len(), rv.Len())
				}

				for i := 0; i < rv.Len(); i++ {
					v, err := inner(rv.Index(i).Interface())
					if err != nil {
						return nil, err
					}

					out.Index(i).Set(reflect.ValueOf(v))
				}

				return out.Interface(), nil
			}, true

		default:
			return r(target)
		}
	}

	return unwrapped
}

// Resolve is the convenience entry point a [derive] field-builder or a
// hand-written Convert call uses: it asks r for a converter targeting T's
// reflect.Type, and adapts it into a strongly-typed Converter[any, T].
func Resolve[T any](r Resolver) (Converter[any, T], bool) {
	var zero T

	target := reflect.TypeOf(zero)
	if target == nil {
		// T is an interface type; reflect.TypeOf(nil interface value)
		// can't recover it, so resolvers keyed by concrete type can never
		// match. Callers needing interface targets must use WhenType with
		// an explicitly obtained reflect.Type.
		return nil, false
	}

	dyn, ok := r(target)
	if !ok {
		return nil, false
	}

	return func(raw any) (T, error) {
		out, err := dyn(raw)
		if err != nil {
			return zero, err
		}

		v, ok := out.(T)
		if !ok {
			return zero, fmt.Errorf("%w: resolver produced %T, want %T", ErrNoConverter, out, zero)
		}

		return v, nil
	}, true
}
