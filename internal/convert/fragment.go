package convert

// Fragment is the generated code for one node: a head expression, an
// optional content block, and trailing modifiers.
//
//	Head(params) { Params
//	    Children...
//	}
//	.modifier
type Fragment struct {
	Comment   string
	Head      string
	Params    string // closure parameters such as "proxy in"
	Children  []*Fragment
	Block     bool // print braces even when there are no children
	Modifiers []string
}

// HasBlock reports whether the fragment prints a content block.
func (f *Fragment) HasBlock() bool {
	return f.Block || len(f.Children) > 0
}

// Modify appends modifiers and returns f.
func (f *Fragment) Modify(mods ...string) *Fragment {
	f.Modifiers = append(f.Modifiers, mods...)
	return f
}

// Walk visits f and its descendants depth-first.
func (f *Fragment) Walk(fn func(*Fragment)) {
	if f == nil {
		return
	}
	fn(f)
	for _, c := range f.Children {
		c.Walk(fn)
	}
}
