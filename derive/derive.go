// Package derive reflects over a struct type and builds the [schema.Schema]
// its fields imply, generalizing the teacher's hand-written
// Flags-name-table/Config-value-holder pairing into one reflective pass.
// It is enrichment spec.md §9's Design Notes invite ("a derivation macro
// over a user struct") on top of the core schema/splitter engine, not part
// of the engine itself.
package derive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	reflect "github.com/goccy/go-reflect"

	"go.jacobcolvin.com/splitarg/convert"
	"go.jacobcolvin.com/splitarg/schema"
)

// ErrUnsupportedField is the sentinel Build wraps when a struct field's
// type has no entry in the field-type-to-option-kind mapping, or when no
// resolver in the element chain can convert its decoded string form.
var ErrUnsupportedField = errors.New("derive: unsupported field")

// fieldSpec pairs a built Option with the struct field it fills, for the
// finalizer's use.
type fieldSpec struct {
	fieldIndex int
	isBranch   bool
	branchPtr  bool
}

// Build reflects over T's exported fields and derives a *schema.Schema:
//
//	bool                        -> Flag
//	*T2 (T2 not a struct)       -> Single
//	[]T2                        -> Repeatable
//	[]T2 tagged "varargs"       -> Varargs
//	T2 (scalar, not a pointer   -> Required
//	  or slice or struct)
//	struct / *struct            -> Branch (recursively derived)
//
// Struct tags of the form `splitarg:"name[,name2][,help=...][,default=...][,varargs]"`
// supply lookup names, help text, a raw default (run through the same
// element converter the field's type resolves to), and the
// Repeatable-vs-Varargs choice. A field with no tag uses its lowercased
// name as a single positional/flag identifier.
//
// The returned schema's Finalizer builds a T by reflection; pair it with
// splitter.FromSchema[T] for a fully type-safe Splitter without
// hand-declaring options.
func Build[T any]() (*schema.Schema, error) {
	return buildForType(reflect.TypeOf(*new(T)))
}

func buildForType(t reflect.Type) (*schema.Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedField, t)
	}

	var (
		opts  []schema.Option
		specs []fieldSpec
	)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}

		opt, spec, err := buildField(f, i)
		if err != nil {
			return nil, fmt.Errorf("derive: field %s.%s: %w", t.Name(), f.Name, err)
		}

		opts = append(opts, opt)
		specs = append(specs, spec)
	}

	if len(opts) == 0 {
		return nil, fmt.Errorf("%w: %s declares no usable fields", ErrUnsupportedField, t)
	}

	finalize := func(values []any) any {
		out := reflect.New(t).Elem()

		for pos, spec := range specs {
			assignField(out.Field(spec.fieldIndex), spec, values[pos])
		}

		return out.Interface()
	}

	return schema.New(finalize, opts...)
}

// assignField sets one struct field from its converted slot value. Branch
// slots arrive as *any (the identity converter's shape for a nested
// Single/Branch) since Branch fields never go through ConvertDyn; every
// other kind arrives already shaped as the field's exact Go type, thanks to
// ConvertDyn/schema.Convert, so it is a direct Set.
func assignField(field reflect.Value, spec fieldSpec, v any) {
	if !spec.isBranch {
		field.Set(reflect.ValueOf(v))
		return
	}

	p, _ := v.(*any)
	if p == nil {
		return
	}

	nested := reflect.ValueOf(*p)

	if spec.branchPtr {
		ptr := reflect.New(nested.Type())
		ptr.Elem().Set(nested)
		field.Set(ptr)

		return
	}

	field.Set(nested)
}

func buildField(f reflect.StructField, index int) (schema.Option, fieldSpec, error) {
	tag := parseTag(f.Tag.Get("splitarg"), strings.ToLower(f.Name))
	ft := f.Type

	switch {
	case ft.Kind() == reflect.Bool:
		opt, err := schema.Of(schema.KindFlag, tag.names...)
		if err != nil {
			return schema.Option{}, fieldSpec{}, err
		}

		return finishOption(opt, tag, index)

	case ft.Kind() == reflect.Ptr && ft.Elem().Kind() == reflect.Struct:
		return buildBranch(ft.Elem(), tag, index, true)

	case ft.Kind() == reflect.Struct:
		return buildBranch(ft, tag, index, false)

	case ft.Kind() == reflect.Ptr:
		return buildScalar(schema.KindSingle, ft.Elem(), tag, index)

	case ft.Kind() == reflect.Slice:
		kind := schema.KindRepeatable
		if tag.varargs {
			kind = schema.KindVarargs
		}

		return buildScalar(kind, ft.Elem(), tag, index)

	default:
		return buildScalar(schema.KindRequired, ft, tag, index)
	}
}

func buildBranch(structType reflect.Type, tag fieldTag, index int, ptr bool) (schema.Option, fieldSpec, error) {
	sub, err := buildForType(structType)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	opt, err := schema.Of(schema.KindBranch, tag.names...)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	opt, err = opt.WithNested(sub)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	opt, err = applyHelp(opt, tag)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	return opt, fieldSpec{fieldIndex: index, isBranch: true, branchPtr: ptr}, nil
}

func buildScalar(kind schema.Kind, elemType reflect.Type, tag fieldTag, index int) (schema.Option, fieldSpec, error) {
	switch elemType.Kind() {
	case reflect.Map, reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return schema.Option{}, fieldSpec{}, fmt.Errorf("%w: %s has no element converter", ErrUnsupportedField, elemType)
	}

	opt, err := schema.Of(kind, tag.names...)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	conv, ok := elementResolver(elemType)
	if !ok {
		return schema.Option{}, fieldSpec{}, fmt.Errorf("%w: no converter for %s", ErrUnsupportedField, elemType)
	}

	opt = schema.ConvertDyn(opt, elemType, conv)

	if tag.hasDefault && kind == schema.KindRequired {
		return schema.Option{}, fieldSpec{}, fmt.Errorf("%w: required field cannot declare a default", ErrUnsupportedField)
	}

	if tag.hasDefault {
		def, err := conv(tag.defaultValue)
		if err != nil {
			return schema.Option{}, fieldSpec{}, fmt.Errorf("default %q: %w", tag.defaultValue, err)
		}

		switch kind {
		case schema.KindSingle:
			ptr := reflect.New(elemType)
			ptr.Elem().Set(reflect.ValueOf(def))
			opt = opt.WithDefault(ptr.Interface())
		case schema.KindRepeatable, schema.KindVarargs:
			one := reflect.MakeSlice(reflect.SliceOf(elemType), 1, 1)
			one.Index(0).Set(reflect.ValueOf(def))
			opt = opt.WithDefault(one.Interface())
		default:
			opt = opt.WithDefault(def)
		}
	}

	opt, err = applyHelp(opt, tag)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	return opt, fieldSpec{fieldIndex: index}, nil
}

func applyHelp(opt schema.Option, tag fieldTag) (schema.Option, error) {
	if tag.help == "" {
		return opt, nil
	}

	return opt.WithHelp(tag.help)
}

// elementResolver is the element-level chain derive uses to convert a
// decoded string into a field's scalar type: the same basic/enumerated/
// reflected chain convert.Default composes from, plus a numeric resolver
// for the common int/uint/float field types the stock chain has no stake
// in (spec.md's "basic" resolver is explicitly only String/Boolean/
// aggregate identity; numeric parsing is a derive-local addition grounded
// on the standard library's strconv, since no pack dependency offers
// generic string-to-number parsing by reflect.Kind).
var elementResolver = convert.OrAll(convert.Basic(), convert.Enumerated(), convert.Reflected(), numericResolver())

func numericResolver() convert.Resolver {
	return func(target reflect.Type) (convert.DynConverter, bool) {
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			bits := target.Bits()

			return func(raw any) (any, error) {
				s, _ := raw.(string)

				n, err := strconv.ParseInt(s, 10, bits)
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(n).Convert(target).Interface(), nil
			}, true

		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			bits := target.Bits()

			return func(raw any) (any, error) {
				s, _ := raw.(string)

				n, err := strconv.ParseUint(s, 10, bits)
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(n).Convert(target).Interface(), nil
			}, true

		case reflect.Float32, reflect.Float64:
			bits := target.Bits()

			return func(raw any) (any, error) {
				s, _ := raw.(string)

				n, err := strconv.ParseFloat(s, bits)
				if err != nil {
					return nil, err
				}

				return reflect.ValueOf(n).Convert(target).Interface(), nil
			}, true

		default:
			return nil, false
		}
	}
}

// fieldTag is the parsed form of a `splitarg:"..."` struct tag.
type fieldTag struct {
	names        []string
	help         string
	defaultValue string
	hasDefault   bool
	varargs      bool
}

func parseTag(raw, fallback string) fieldTag {
	var tag fieldTag

	for _, seg := range strings.Split(raw, ",") {
		switch {
		case strings.HasPrefix(seg, "help="):
			tag.help = strings.TrimPrefix(seg, "help=")
		case strings.HasPrefix(seg, "default="):
			tag.defaultValue = strings.TrimPrefix(seg, "default=")
			tag.hasDefault = true
		case seg == "varargs":
			tag.varargs = true
		case seg != "":
			tag.names = append(tag.names, seg)
		}
	}

	if len(tag.names) == 0 {
		tag.names = []string{fallback}
	}

	return tag
}

func finishOption(opt schema.Option, tag fieldTag, index int) (schema.Option, fieldSpec, error) {
	opt, err := applyHelp(opt, tag)
	if err != nil {
		return schema.Option{}, fieldSpec{}, err
	}

	return opt, fieldSpec{fieldIndex: index}, nil
}
