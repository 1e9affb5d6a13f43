package splitter

import "go.jacobcolvin.com/splitarg/schema"

// workspace holds one slot per option, indexed by declaration position,
// for the duration of a single split. It is discarded once the aggregate
// has been built.
type workspace struct {
	raws []any
}

func newWorkspace(opts []schema.Option) *workspace {
	raws := make([]any, len(opts))

	for i, o := range opts {
		switch o.Kind() {
		case schema.KindFlag:
			raws[i] = false
		case schema.KindSingle, schema.KindBranch:
			raws[i] = schema.Optional{}
		case schema.KindRepeatable, schema.KindVarargs:
			raws[i] = []any{}
		case schema.KindRequired:
			raws[i] = ""
		}
	}

	return &workspace{raws: raws}
}

func (w *workspace) setFlag(i int, v bool) { w.raws[i] = v }

func (w *workspace) setRequired(i int, v string) { w.raws[i] = v }

func (w *workspace) setOptional(i int, v any) { w.raws[i] = schema.Optional{Present: true, Value: v} }

func (w *workspace) append(i int, vs ...any) {
	cur, _ := w.raws[i].([]any)
	w.raws[i] = append(cur, vs...)
}

func (w *workspace) finalize(s *schema.Schema) (any, error) {
	opts := s.Options()
	vals := make([]any, len(opts))

	for i, o := range opts {
		v, err := o.Apply(w.raws[i])
		if err != nil {
			return nil, converterFailedErr(o, err)
		}

		vals[i] = v
	}

	return s.Finalize(vals), nil
}
