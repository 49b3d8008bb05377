package layout

import (
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

type gravityAxes struct {
	vertical   bool
	horizontal bool
}

func (g gravityAxes) any() bool { return g.vertical || g.horizontal }

// parseGravity reads the container's gravity. Gravity is either a string
// of tokens joined by "|" or an array of tokens. Components not declared
// default to top and leading.
func parseGravity(n *core.Node, p *Plan) (core.Anchor, gravityAxes) {
	anchor := core.AnchorTopLeading
	var declared gravityAxes

	raw, ok := n.Attr(AttrGravity)
	if !ok {
		return anchor, declared
	}

	var tokens []string
	switch v := raw.(type) {
	case string:
		tokens = strings.Split(v, "|")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				tokens = append(tokens, s)
			}
		}
	default:
		p.warn(AttrGravity, "gravity must be a string or array")
		return anchor, declared
	}

	for _, tok := range tokens {
		switch strings.TrimSpace(tok) {
		case "top":
			anchor.Vertical, declared.vertical = "top", true
		case "bottom":
			anchor.Vertical, declared.vertical = "bottom", true
		case "centerVertical":
			anchor.Vertical, declared.vertical = "center", true
		case "left", "leading", "start":
			anchor.Horizontal, declared.horizontal = "leading", true
		case "right", "trailing", "end":
			anchor.Horizontal, declared.horizontal = "trailing", true
		case "centerHorizontal":
			anchor.Horizontal, declared.horizontal = "center", true
		case "center":
			anchor = core.AnchorCenter
			declared = gravityAxes{vertical: true, horizontal: true}
		case "":
		default:
			p.warn(AttrGravity, "unknown gravity %q ignored", tok)
		}
	}
	return anchor, declared
}
