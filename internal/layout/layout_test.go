package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

func node(kind string, pairs ...any) *core.Node {
	return &core.Node{Kind: kind, Attrs: core.ObjectOf(pairs...)}
}

func childIndexes(slots []Slot) []int {
	out := make([]int, len(slots))
	for i, s := range slots {
		out[i] = s.Child
	}
	return out
}

func TestSelect_Strategies(t *testing.T) {
	tests := []struct {
		name      string
		container *core.Node
		children  []*core.Node
		strategy  core.Strategy
		axis      core.Axis
	}{
		{
			name:      "vertical with zero height child is weighted",
			container: node("View", "orientation", "vertical"),
			children:  []*core.Node{node("Text", "height", 0), node("Text")},
			strategy:  core.StrategyWeighted,
			axis:      core.AxisVertical,
		},
		{
			name:      "horizontal with weight is weighted",
			container: node("View", "orientation", "horizontal"),
			children:  []*core.Node{node("Text", "weight", 2), node("Text")},
			strategy:  core.StrategyWeighted,
			axis:      core.AxisHorizontal,
		},
		{
			name:      "zero size across the axis does not weight",
			container: node("View", "orientation", "vertical"),
			children:  []*core.Node{node("Text", "width", 0)},
			strategy:  core.StrategySequential,
			axis:      core.AxisVertical,
		},
		{
			name:      "axis without weights is sequential",
			container: node("View", "orientation", "vertical"),
			children:  []*core.Node{node("Text"), node("Text", "weight", 0)},
			strategy:  core.StrategySequential,
			axis:      core.AxisVertical,
		},
		{
			name:      "mutually above siblings are relative",
			container: node("View", "orientation", "vertical"),
			children: []*core.Node{
				node("Text", "id", "a", "above", "b"),
				node("Text", "id", "b", "above", "a"),
			},
			strategy: core.StrategyRelative,
		},
		{
			name:      "each below the other conflicts",
			container: node("View", "orientation", "horizontal", "weight", 1),
			children: []*core.Node{
				node("Text", "id", "a", "alignBottomOfView", "b"),
				node("Text", "id", "b", "alignBottomOfView", "a"),
			},
			strategy: core.StrategyRelative,
		},
		{
			name:      "no axis with anchors is relative",
			container: node("View"),
			children: []*core.Node{
				node("Text", "id", "title"),
				node("Text", "below", "title"),
			},
			strategy: core.StrategyRelative,
		},
		{
			name:      "no axis without anchors is layered",
			container: node("View"),
			children:  []*core.Node{node("Image"), node("Text")},
			strategy:  core.StrategyLayered,
		},
		{
			name:      "consistent anchors in an axis container stay sequential",
			container: node("View", "orientation", "vertical"),
			children: []*core.Node{
				node("Text", "id", "a"),
				node("Text", "id", "b", "below", "a"),
			},
			strategy: core.StrategySequential,
			axis:     core.AxisVertical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Select(tt.container, tt.children)
			assert.Equal(t, tt.strategy, p.Strategy)
			assert.Equal(t, tt.axis, p.Axis)
		})
	}
}

func TestSelect_WeightedSlots(t *testing.T) {
	p := Select(node("View", "orientation", "vertical"), []*core.Node{
		node("Text", "height", 0),
		node("Text", "weight", 3),
		node("Text", "height", 44),
	})

	require.Equal(t, core.StrategyWeighted, p.Strategy)
	require.Len(t, p.Slots, 3)
	assert.InDelta(t, 1.0, p.Slots[0].Weight, 0)
	assert.InDelta(t, 3.0, p.Slots[1].Weight, 0)
	assert.InDelta(t, 0.0, p.Slots[2].Weight, 0)
}

func TestSelect_SequentialFillers(t *testing.T) {
	kids := []*core.Node{node("Text"), node("Text"), node("Text")}

	tests := []struct {
		name      string
		container *core.Node
		want      []int
	}{
		{"no gravity", node("View", "orientation", "vertical"), []int{0, 1, 2}},
		{"top gravity adds trailing filler", node("View", "orientation", "vertical", "gravity", "top"), []int{0, 1, 2, -1}},
		{"bottom gravity adds leading filler", node("View", "orientation", "vertical", "gravity", "bottom|left"), []int{-1, 0, 1, 2}},
		{"center adds both", node("View", "orientation", "horizontal", "gravity", "center"), []int{-1, 0, 1, 2, -1}},
		{"cross-axis gravity adds none", node("View", "orientation", "horizontal", "gravity", "top"), []int{0, 1, 2}},
		{"equal spacing between children", node("View", "orientation", "vertical", "distribution", "equalSpacing"), []int{0, -1, 1, -1, 2}},
		{"equal centering", node("View", "orientation", "vertical", "distribution", "equalCentering"), []int{-1, 0, -1, 1, -1, 2, -1}},
		{"direction reverses", node("View", "orientation", "vertical", "direction", "bottomToTop"), []int{2, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Select(tt.container, kids)
			assert.Equal(t, core.StrategySequential, p.Strategy)
			assert.Equal(t, tt.want, childIndexes(p.Slots))
		})
	}
}

func TestSelect_LayeredKeepsOrderAndAnchor(t *testing.T) {
	p := Select(node("View", "gravity", "bottom|right", "direction", "rightToLeft"), []*core.Node{node("Image"), node("Text")})

	assert.Equal(t, core.StrategyLayered, p.Strategy)
	assert.Equal(t, []int{0, 1}, childIndexes(p.Slots), "direction does not reorder layered stacks")
	assert.Equal(t, core.Anchor{Vertical: "bottom", Horizontal: "trailing"}, p.Anchor)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, AttrDirection, p.Warnings[0].Attribute)
}

func TestSelect_InvalidOrientationFallsBack(t *testing.T) {
	p := Select(node("View", "orientation", "diagonal", "gravity", "center"), []*core.Node{node("Text")})

	assert.Equal(t, core.StrategyLayered, p.Strategy)
	assert.Equal(t, core.AnchorTopLeading, p.Anchor)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, AttrOrientation, p.Warnings[0].Attribute)
	assert.ErrorIs(t, p.Warnings[0], core.ErrInvalidAttribute)
}

func TestSelect_SelfAnchorIsConflict(t *testing.T) {
	p := Select(node("View", "orientation", "vertical"), []*core.Node{node("Text", "id", "a", "toLeftOf", "a")})

	assert.Equal(t, core.StrategyRelative, p.Strategy)
	require.NotEmpty(t, p.Warnings)
	assert.Contains(t, p.Warnings[0].Msg, "a is leftOf itself")
}

func TestSelect_BadWeightWarns(t *testing.T) {
	p := Select(node("View", "orientation", "vertical"), []*core.Node{node("Text", "weight", "lots")})

	assert.Equal(t, core.StrategySequential, p.Strategy)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, AttrWeight, p.Warnings[0].Attribute)
}
