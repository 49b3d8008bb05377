package dag

import (
	"reflect"
	"testing"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

func sampleGraph() *Graph {
	return FromRecords(map[string]core.DependencyRecord{
		"login": {
			Partials: []string{"components/_header.json"},
			Styles:   []string{"primary"},
		},
		"settings/profile": {
			Partials: []string{"components/_header.json", "components/_avatar.json"},
		},
		"about": {},
	})
}

func TestFromRecords(t *testing.T) {
	g := sampleGraph()

	if g.NodeCount() != 6 {
		t.Errorf("expected 6 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 4 {
		t.Errorf("expected 4 edges, got %d", g.EdgeCount())
	}

	docs := g.Nodes(KindDocument)
	var names []string
	for _, n := range docs {
		names = append(names, n.Name)
	}
	want := []string{"about", "login", "settings/profile"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("documents = %v, want %v", names, want)
	}
}

func TestGraph_AddEdge_Invalid(t *testing.T) {
	g := NewGraph()
	doc := g.AddNode(KindDocument, "login")
	other := g.AddNode(KindDocument, "about")
	style := g.AddNode(KindStyle, "primary")

	tests := []struct {
		name       string
		dependency string
		dependent  string
	}{
		{"missing dependency", "partial:_x.json", doc},
		{"missing dependent", style, "doc:nope"},
		{"document as dependency", other, doc},
		{"style as dependent", doc, style},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.dependency, tt.dependent); err == nil {
				t.Errorf("expected error adding %s -> %s", tt.dependency, tt.dependent)
			}
		})
	}

	if err := g.AddEdge(style, doc); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(style, doc); err != nil {
		t.Fatalf("duplicate AddEdge: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("duplicate edge counted, got %d edges", g.EdgeCount())
	}
}

func TestGraph_Affected(t *testing.T) {
	g := sampleGraph()

	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{"shared partial", []string{NodeID(KindPartial, "components/_header.json")}, []string{"login", "settings/profile"}},
		{"style", []string{NodeID(KindStyle, "primary")}, []string{"login"}},
		{"document itself", []string{NodeID(KindDocument, "about")}, []string{"about"}},
		{"unknown", []string{NodeID(KindStyle, "missing")}, []string{}},
		{"union", []string{NodeID(KindStyle, "primary"), NodeID(KindPartial, "components/_avatar.json")}, []string{"login", "settings/profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Affected(tt.changed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Affected(%v) = %v, want %v", tt.changed, got, tt.want)
			}
		})
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := sampleGraph()

	deps := g.Dependencies(NodeID(KindDocument, "login"))
	want := []string{"partial:components/_header.json", "style:primary"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("Dependencies = %v, want %v", deps, want)
	}

	dependents := g.Dependents(NodeID(KindPartial, "components/_header.json"))
	want = []string{"doc:login", "doc:settings/profile"}
	if !reflect.DeepEqual(dependents, want) {
		t.Errorf("Dependents = %v, want %v", dependents, want)
	}
}

func TestGraph_UnusedAndSubgraph(t *testing.T) {
	g := sampleGraph()
	g.AddNode(KindStyle, "legacy")

	if got := g.Unused(); !reflect.DeepEqual(got, []string{"style:legacy"}) {
		t.Errorf("Unused = %v", got)
	}

	sub := g.Subgraph([]string{"settings/profile", "missing"})
	if sub.NodeCount() != 3 || sub.EdgeCount() != 2 {
		t.Errorf("subgraph has %d nodes and %d edges, want 3 and 2", sub.NodeCount(), sub.EdgeCount())
	}
	if _, ok := sub.GetNode("style:primary"); ok {
		t.Error("subgraph should not contain styles of other documents")
	}
}

func TestParseNodeID(t *testing.T) {
	kind, name, err := ParseNodeID("partial:components/_header.json")
	if err != nil || kind != KindPartial || name != "components/_header.json" {
		t.Errorf("ParseNodeID = %q, %q, %v", kind, name, err)
	}
	for _, bad := range []string{"login", "doc:", "model:x"} {
		if _, _, err := ParseNodeID(bad); err == nil {
			t.Errorf("ParseNodeID(%q) should fail", bad)
		}
	}
}
