package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeFromObject(t *testing.T) {
	obj := ObjectOf(
		"kind", "View",
		"orientation", "vertical",
		"child", []any{
			ObjectOf("kind", "Text", "text", "hello"),
			ObjectOf("kind", "View", "child", ObjectOf("kind", "Button")),
		},
	)

	n, err := NodeFromObject(obj, "login.json")
	require.NoError(t, err)

	assert.Equal(t, "View", n.Kind)
	assert.Equal(t, []string{"orientation"}, n.Attrs.Keys())
	require.Len(t, n.Children, 2)
	assert.Equal(t, "Text", n.Children[0].Kind)
	require.NotNil(t, n.Children[1].Child)
	assert.Equal(t, "Button", n.Children[1].Child.Kind)
	assert.Equal(t, "login.json", n.Children[1].Child.Source)
}

func TestNodeFromObject_RejectsScalarChild(t *testing.T) {
	_, err := NodeFromObject(ObjectOf("kind", "View", "child", []any{"oops"}), "x.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "child[0]")
}

func TestNode_WalkPaths(t *testing.T) {
	n, err := NodeFromObject(ObjectOf(
		"kind", "View",
		"child", []any{
			ObjectOf("kind", "Text"),
			ObjectOf("kind", "Scroll", "child", ObjectOf("kind", "Image")),
		},
	), "")
	require.NoError(t, err)

	var paths []string
	n.Walk(func(_ *Node, path string) bool {
		paths = append(paths, path)
		return true
	})

	assert.Equal(t, []string{"$", "$.child[0]", "$.child[1]", "$.child[1].child"}, paths)
}

func TestNode_ToObjectRoundTrip(t *testing.T) {
	obj := ObjectOf("kind", "View", "id", "root", "child", []any{ObjectOf("kind", "Text")})

	n, err := NodeFromObject(obj, "")
	require.NoError(t, err)
	assert.True(t, obj.Equal(n.ToObject()))
}

func TestNode_Equal(t *testing.T) {
	a := &Node{Kind: "Text", Attrs: ObjectOf("text", "hi")}
	b := &Node{Kind: "Text", Attrs: ObjectOf("text", "hi"), Source: "other.json"}
	c := &Node{Kind: "Text", Attrs: ObjectOf("text", "bye")}

	assert.True(t, a.Equal(b), "source is ignored")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
