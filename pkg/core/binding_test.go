package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBindingExpr(t *testing.T) {
	tests := []struct {
		in     string
		expr   string
		isExpr bool
	}{
		{"@{count}", "count", true},
		{"@{ user.name }", "user.name", true},
		{"@{}", "", true},
		{"@{  }", "", true},
		{"count", "", false},
		{"@{count", "", false},
		{"{count}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			expr, ok := ParseBindingExpr(tt.in)
			assert.Equal(t, tt.isExpr, ok)
			assert.Equal(t, tt.expr, expr)
		})
	}
}

func TestExprRoot(t *testing.T) {
	assert.Equal(t, "user", ExprRoot("user.name"))
	assert.Equal(t, "count", ExprRoot("count"))
	assert.Equal(t, "", ExprRoot("!flag"))
}

func TestAnchorName(t *testing.T) {
	assert.Equal(t, "topLeading", AnchorTopLeading.Name())
	assert.Equal(t, "center", AnchorCenter.Name())
	assert.Equal(t, "bottom", Anchor{Vertical: "bottom", Horizontal: "center"}.Name())
	assert.Equal(t, "trailing", Anchor{Vertical: "center", Horizontal: "trailing"}.Name())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindView, ParseKind("View"))
	assert.Equal(t, KindText, ParseKind("label"))
	assert.Equal(t, KindToggle, ParseKind("Switch"))
	assert.Equal(t, KindUnknown, ParseKind("MapView"))
	assert.True(t, KindScroll.IsContainer())
	assert.False(t, KindText.IsContainer())
}

func TestDependencyRecord_Normalized(t *testing.T) {
	r := DependencyRecord{Partials: []string{"b", "a", "b"}, Styles: nil}.Normalized()
	assert.Equal(t, []string{"a", "b"}, r.Partials)
	assert.Nil(t, r.Styles)
	assert.True(t, DependencyRecord{}.Empty())
}
