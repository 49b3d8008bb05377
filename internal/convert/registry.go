package convert

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Converter turns one node into a fragment.
type Converter interface {
	Convert(ctx *Context, n *core.Node) (*Fragment, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx *Context, n *core.Node) (*Fragment, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx *Context, n *core.Node) (*Fragment, error) {
	return f(ctx, n)
}

// UnknownKindError is returned when a kind cannot be registered.
type UnknownKindError struct {
	Kind   string
	Reason string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("cannot register converter for %q: %s", e.Kind, e.Reason)
}

// Registry maps widget kinds outside the built-in set to converters.
// Each compiler instance owns its registry. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
	sources    map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: make(map[string]Converter),
		sources:    make(map[string]string),
	}
}

// Register adds a converter for kind. source describes where it came from
// (a script path, "go", ...). Built-in kinds cannot be overridden and a
// kind can only be registered once.
func (r *Registry) Register(kind, source string, c Converter) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return &UnknownKindError{Kind: kind, Reason: "kind is empty"}
	}
	if c == nil {
		return &UnknownKindError{Kind: kind, Reason: "converter is nil"}
	}
	if core.ParseKind(kind) != core.KindUnknown {
		return &UnknownKindError{Kind: kind, Reason: "built-in kind"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, exists := r.sources[kind]; exists {
		return &UnknownKindError{Kind: kind, Reason: "already registered by " + prev}
	}
	r.converters[kind] = c
	r.sources[kind] = source
	return nil
}

// Lookup returns the converter registered for kind.
func (r *Registry) Lookup(kind string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[kind]
	return c, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.converters))
	for k := range r.converters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Source returns where the converter for kind was registered from.
func (r *Registry) Source(kind string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[kind]
}

// Convert dispatches n: built-in kinds go straight to their converter,
// other kinds through the registered table, and anything left becomes
// a placeholder fragment.
func (r *Registry) Convert(ctx *Context, n *core.Node) (*Fragment, error) {
	if kind := core.ParseKind(n.Kind); kind != core.KindUnknown {
		return convertBuiltin(ctx, kind, n)
	}
	if c, ok := r.Lookup(n.Kind); ok {
		f, err := c.Convert(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("%s converter at %s: %w", n.Kind, ctx.Path, err)
		}
		if f == nil {
			return nil, fmt.Errorf("%s converter at %s returned no fragment", n.Kind, ctx.Path)
		}
		return f.Modify(commonModifiers(ctx, n)...), nil
	}
	return placeholder(ctx, n), nil
}

func placeholder(ctx *Context, n *core.Node) *Fragment {
	kind := n.Kind
	if kind == "" {
		kind = "<missing>"
	}
	ctx.Warn(core.KeyKind, fmt.Sprintf("no converter for kind %q; emitting placeholder", kind))
	ctx.state.placeholders = append(ctx.state.placeholders, kind)
	return &Fragment{
		Comment: fmt.Sprintf("unsupported kind %q", kind),
		Head:    "EmptyView()",
	}
}
