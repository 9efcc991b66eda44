package content

// Op is a comparison operator of the store query DSL.
type Op string

const (
	OpEquals Op = "equals"
	OpLike   Op = "like"
)

// Where is a filter tree. Exactly one of a leaf condition (Field/Op/Value),
// Or or And is set. A nil *Where matches every document.
type Where struct {
	Field string
	Op    Op
	Value string

	Or  []*Where
	And []*Where
}

// Equals matches documents whose field equals value exactly.
func Equals(field, value string) *Where {
	return &Where{Field: field, Op: OpEquals, Value: value}
}

// Like matches documents whose field contains value, ignoring case.
func Like(field, value string) *Where {
	return &Where{Field: field, Op: OpLike, Value: value}
}

// Or matches documents matching any of conds. Nil conditions are dropped.
func Or(conds ...*Where) *Where {
	return &Where{Or: compact(conds)}
}

// And matches documents matching all of conds. Nil conditions are dropped.
func And(conds ...*Where) *Where {
	return &Where{And: compact(conds)}
}

// IsLeaf reports whether w is a single field condition.
func (w *Where) IsLeaf() bool {
	return w != nil && w.Field != ""
}

// Walk calls fn for every leaf condition in w.
func (w *Where) Walk(fn func(leaf *Where)) {
	if w == nil {
		return
	}
	if w.IsLeaf() {
		fn(w)
		return
	}
	for _, c := range w.Or {
		c.Walk(fn)
	}
	for _, c := range w.And {
		c.Walk(fn)
	}
}

func compact(conds []*Where) []*Where {
	out := conds[:0:0]
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
