package convert

import reflect "github.com/goccy/go-reflect"

// Manifest is the optional introspection record spec.md §9 mentions for
// one source revision's "ConverterMirror" feature: which resolver produced
// a converter, for which type, and (for an unwrapped container) what it
// delegated to. It exists so tests can assert which resolver fired without
// the hard contract depending on it.
type Manifest struct {
	ResolverName string
	TargetType   string
	Inner        *Manifest
}

// NamedResolver pairs a Resolver with the name it reports in the Manifest
// it produces.
type NamedResolver struct {
	Name     string
	Resolver Resolver
}

// ManifestResolver behaves like OrAll over the given named resolvers, but
// also returns the Manifest of whichever resolver matched. It does not
// unwrap container types, so the Manifests it returns have a nil Inner.
func ManifestResolver(named ...NamedResolver) func(target reflect.Type) (DynConverter, Manifest, bool) {
	return func(target reflect.Type) (DynConverter, Manifest, bool) {
		for _, n := range named {
			if c, ok := n.Resolver(target); ok {
				return c, Manifest{ResolverName: n.Name, TargetType: target.String()}, true
			}
		}

		return nil, Manifest{}, false
	}
}

// DefaultNamed is the basic/enumerated/reflected chain Default is built
// from, with names attached and without Default's Unwrap layer, for tests
// and tooling that want to know which stock resolver served a given type.
var DefaultNamed = []NamedResolver{
	{Name: "basic", Resolver: Basic()},
	{Name: "enumerated", Resolver: Enumerated()},
	{Name: "reflected", Resolver: Reflected()},
}
