package layout

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Sibling anchor attributes. Each names the id of a sibling.
var anchorAttrs = map[string]relation{
	"above":             {kind: "above"},
	"alignTopOfView":    {kind: "above"},
	"below":             {kind: "above", flip: true},
	"alignBottomOfView": {kind: "above", flip: true},
	"toLeftOf":          {kind: "leftOf"},
	"alignLeftOfView":   {kind: "leftOf"},
	"toRightOf":         {kind: "leftOf", flip: true},
	"alignRightOfView":  {kind: "leftOf", flip: true},
}

var anchorAttrNames = func() []string {
	names := make([]string, 0, len(anchorAttrs))
	for name := range anchorAttrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Edge alignments against a sibling. They anchor a child but impose no order.
var edgeAttrs = []string{"alignTop", "alignBottom", "alignLeft", "alignRight", "alignCenterHorizontal", "alignCenterVertical"}

type relation struct {
	kind string
	flip bool // the relation runs from target to self
}

type edge struct {
	kind     string
	from, to string
}

type anchorSet struct {
	edges    []edge
	anchored bool
}

func (a anchorSet) any() bool { return a.anchored }

// conflict describes the first pair of children whose anchors contradict,
// or returns "" when there is none.
func (a anchorSet) conflict() string {
	seen := make(map[edge]bool, len(a.edges))
	for _, e := range a.edges {
		if e.from == e.to {
			return fmt.Sprintf("%s is %s itself", e.from, e.kind)
		}
		seen[e] = true
	}
	var conflicts []string
	for _, e := range a.edges {
		if seen[edge{kind: e.kind, from: e.to, to: e.from}] && e.from < e.to {
			conflicts = append(conflicts, fmt.Sprintf("%s and %s are each %s the other", e.from, e.to, e.kind))
		}
	}
	if len(conflicts) == 0 {
		return ""
	}
	sort.Strings(conflicts)
	return conflicts[0]
}

// collectAnchors gathers sibling anchors. Children without an id are
// named by their position.
func collectAnchors(children []*core.Node) anchorSet {
	var set anchorSet
	for i, c := range children {
		self := c.ID()
		if self == "" {
			self = fmt.Sprintf("#%d", i)
		}
		for _, attr := range anchorAttrNames {
			rel := anchorAttrs[attr]
			target, ok := c.StringAttr(attr)
			if !ok || target == "" {
				continue
			}
			set.anchored = true
			e := edge{kind: rel.kind, from: self, to: target}
			if rel.flip {
				e.from, e.to = target, self
			}
			set.edges = append(set.edges, e)
		}
		for _, attr := range edgeAttrs {
			if target, ok := c.StringAttr(attr); ok && target != "" {
				set.anchored = true
			}
		}
	}
	return set
}
