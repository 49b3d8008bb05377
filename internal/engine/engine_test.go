package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplayout/internal/convert"
	"github.com/leapstack-labs/leaplayout/internal/testutil"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

const (
	loginDoc = `{
  "kind": "View",
  "orientation": "vertical",
  "data": [{"name": "user", "class": "String", "defaultValue": ""}],
  "child": [
    {"include": "components/header", "variables": {"@@TITLE@@": "Welcome"}},
    {"kind": "TextField", "hint": "User", "text": "@{user}"},
    {"kind": "Button", "text": "Sign in", "onClick": "@{signIn}"}
  ]
}`
	profileDoc = `{"kind": "View", "orientation": "vertical", "child": [{"kind": "Text", "text": "Profile", "style": "title"}]}`
	headerDoc  = `{"kind": "Text", "text": "@@TITLE@@", "style": "title"}`
	titleStyle = `{"fontSize": 20, "font": "bold"}`
)

func newProject(t *testing.T) *testutil.Project {
	t.Helper()
	p := testutil.NewProject(t)
	p.WriteAll(map[string]string{
		"layouts/login.json":              loginDoc,
		"layouts/settings/profile.json":   profileDoc,
		"layouts/components/_header.json": headerDoc,
		"styles/title.json":               titleStyle,
	})
	return p
}

func newEngine(t *testing.T, p *testutil.Project, mod func(*Config)) *Engine {
	t.Helper()
	cfg := Config{
		LayoutsDir: p.LayoutsDir(),
		StylesDir:  p.StylesDir(),
		OutputDir:  p.Path("generated"),
		CachePath:  p.Path(".leaplayout/cache.yaml"),
		Workers:    2,
		Logger:     testutil.NewTestLogger(t),
	}
	if mod != nil {
		mod(&cfg)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func build(t *testing.T, e *Engine, opts BuildOptions) *BuildResult {
	t.Helper()
	res, err := e.Build(context.Background(), opts)
	require.NoError(t, err)
	return res
}

func names(docs []*DocumentResult) []string {
	out := []string{}
	for _, d := range docs {
		out = append(out, d.Document)
	}
	return out
}

func TestBuild_Incremental(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{})

	assert.Equal(t, []string{"login", "settings/profile"}, names(res.Compiled()))
	for _, d := range res.Documents {
		assert.Equal(t, core.StaleNew, d.Reason.Reason)
	}
	assert.Equal(t, core.RunStatusCompleted, res.Status())
	assert.FileExists(t, p.Path("generated/LoginView.swift"))
	assert.FileExists(t, p.Path("generated/LoginData.swift"))
	assert.FileExists(t, p.Path("generated/settings/SettingsProfileView.swift"))

	login, ok := e.Cache().Entry("login")
	require.True(t, ok)
	assert.Equal(t, []string{"components/_header.json"}, login.Dependencies.Partials)
	assert.Equal(t, []string{"title"}, login.Dependencies.Styles)
	assert.Equal(t, []string{"LoginData.swift", "LoginView.swift"}, login.Artifacts)
	_, ok = e.Cache().LastBuild()
	assert.True(t, ok)

	view, err := os.ReadFile(p.Path("generated/LoginView.swift"))
	require.NoError(t, err)
	assert.Contains(t, string(view), `Text("Welcome")`)
	assert.Contains(t, string(view), ".font(.system(size: 20, weight: .bold))")
	assert.Contains(t, string(view), "func signIn()")

	res = build(t, e, BuildOptions{})

	assert.Empty(t, res.Compiled())
	require.Len(t, res.Skipped(), 2)
	for _, d := range res.Skipped() {
		assert.Equal(t, core.StaleUpToDate, d.Reason.Reason)
	}
}

func TestBuild_CacheSurvivesRestart(t *testing.T) {
	p := newProject(t)
	build(t, newEngine(t, p, nil), BuildOptions{})

	res := build(t, newEngine(t, p, nil), BuildOptions{})

	assert.Empty(t, res.Compiled())
}

func TestBuild_PartialChangeInvalidatesDependents(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	p.Touch("layouts/components/_header.json", time.Hour)
	res := build(t, e, BuildOptions{})

	require.Equal(t, []string{"login"}, names(res.Compiled()))
	assert.Equal(t, core.Staleness{Reason: core.StaleDependencyChanged, Detail: "components/_header.json"}, res.Compiled()[0].Reason)
}

func TestBuild_StyleChangeInvalidatesDependents(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	p.Touch("styles/title.json", time.Hour)
	res := build(t, e, BuildOptions{})

	assert.Equal(t, []string{"login", "settings/profile"}, names(res.Compiled()))
}

func TestBuild_MissingStyleFailsOnlyThatDocument(t *testing.T) {
	p := newProject(t)
	p.Write("layouts/broken.json", `{"kind": "Text", "style": "missing"}`)
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{})

	require.Len(t, res.Failed(), 1)
	failed := res.Failed()[0]
	assert.Equal(t, "broken", failed.Document)
	assert.Equal(t, core.ErrorKindNotFound, failed.ErrorKind())
	assert.Contains(t, failed.Err.Error(), `style "missing" not found`)
	assert.ErrorIs(t, res.Err(), core.ErrNotFound)
	assert.Equal(t, core.RunStatusPartial, res.Status())

	_, ok := e.Cache().Entry("broken")
	assert.False(t, ok, "failed document must not get a cache entry")
	_, ok = e.Cache().Entry("login")
	assert.True(t, ok)
	_, ok = e.Cache().LastBuild()
	assert.False(t, ok)
	assert.NoFileExists(t, p.Path("generated/BrokenView.swift"))

	// The failed document is retried; the others stay cached.
	res = build(t, e, BuildOptions{})
	assert.Equal(t, []string{"broken"}, names(res.Failed()))
	assert.Empty(t, res.Compiled())
}

func TestBuild_ConverterPanicFailsOnlyThatDocument(t *testing.T) {
	p := newProject(t)
	p.Write("layouts/chart.json", `{"kind": "View", "child": {"kind": "Chart"}}`)
	e := newEngine(t, p, func(c *Config) {
		c.Converters = map[string]convert.Converter{
			"Chart": convert.ConverterFunc(func(*convert.Context, *core.Node) (*convert.Fragment, error) {
				panic("chart converter exploded")
			}),
		}
	})

	var res *BuildResult
	require.NotPanics(t, func() { res = build(t, e, BuildOptions{}) })

	assert.Equal(t, []string{"chart"}, names(res.Failed()))
	assert.Contains(t, res.Failed()[0].Err.Error(), "chart converter exploded")
	assert.ElementsMatch(t, []string{"login", "settings/profile"}, names(res.Compiled()))
	_, ok := e.Cache().Entry("chart")
	assert.False(t, ok)
}

func TestBuild_ConflictingArtifactPathsFailLaterDocument(t *testing.T) {
	p := newProject(t)
	p.Write("layouts/a-b.json", `{"kind": "Text", "text": "dash"}`)
	p.Write("layouts/a_b.json", `{"kind": "Text", "text": "underscore"}`)
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{})

	require.Equal(t, []string{"a_b"}, names(res.Failed()))
	failed := res.Failed()[0]
	assert.Equal(t, core.ErrorKindWriteFailure, failed.ErrorKind())
	assert.Contains(t, failed.Err.Error(), `also generated by document "a-b"`)
	assert.Contains(t, names(res.Compiled()), "a-b")

	_, ok := e.Cache().Entry("a_b")
	assert.False(t, ok)
	view, err := os.ReadFile(p.Path("generated/ABView.swift"))
	require.NoError(t, err)
	assert.Contains(t, string(view), "dash")

	// Selecting the later document alone still reports the conflict.
	res = build(t, e, BuildOptions{Select: []string{"a_b"}})
	assert.Equal(t, []string{"a_b"}, names(res.Failed()))
}

func TestBuild_FailureKeepsPreviousEntry(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})
	before, ok := e.Cache().Entry("settings/profile")
	require.True(t, ok)

	p.Write("layouts/settings/profile.json", `{"kind": "View", "child": [`)
	res := build(t, e, BuildOptions{})

	require.Equal(t, []string{"settings/profile"}, names(res.Failed()))
	assert.Equal(t, core.ErrorKindParse, res.Failed()[0].ErrorKind())
	after, ok := e.Cache().Entry("settings/profile")
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.FileExists(t, p.Path("generated/settings/SettingsProfileView.swift"))
}

func TestBuild_CyclicInclude(t *testing.T) {
	p := testutil.NewProject(t)
	p.WriteAll(map[string]string{
		"layouts/loop.json": `{"include": "a"}`,
		"layouts/_a.json":   `{"kind": "View", "child": {"include": "b"}}`,
		"layouts/_b.json":   `{"kind": "View", "child": {"include": "a"}}`,
	})
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{})

	require.Len(t, res.Failed(), 1)
	assert.Equal(t, core.ErrorKindCyclicInclude, res.Failed()[0].ErrorKind())
	assert.Equal(t, core.RunStatusFailed, res.Status())
}

func TestBuild_PrunesDeletedDocuments(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	p.Remove("layouts/settings/profile.json")
	res := build(t, e, BuildOptions{})

	assert.Equal(t, []string{"settings/profile"}, res.Pruned)
	_, ok := e.Cache().Entry("settings/profile")
	assert.False(t, ok)
	assert.NoFileExists(t, p.Path("generated/settings/SettingsProfileView.swift"))
	assert.NoFileExists(t, p.Path("generated/settings/SettingsProfileData.swift"))
	assert.FileExists(t, p.Path("generated/LoginView.swift"))
}

func TestBuild_Select(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{Select: []string{"settings/profile"}})
	assert.Equal(t, []string{"settings/profile"}, names(res.Compiled()))
	assert.Empty(t, res.Pruned)

	_, err := e.Build(context.Background(), BuildOptions{Select: []string{"nope"}})
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestBuild_DependentsOf(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	tests := []struct {
		name string
		refs []string
		want []string
	}{
		{name: "partial by include name", refs: []string{"components/header"}, want: []string{"login"}},
		{name: "partial by node id", refs: []string{"partial:components/_header.json"}, want: []string{"login"}},
		{name: "style by name", refs: []string{"title"}, want: []string{"login", "settings/profile"}},
		{name: "unknown", refs: []string{"nothing"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := build(t, e, BuildOptions{DependentsOf: tt.refs})
			assert.Equal(t, tt.want, names(res.Compiled()))
			for _, d := range res.Compiled() {
				assert.Equal(t, core.StaleForced, d.Reason.Reason)
			}
		})
	}
}

func TestBuild_Force(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	res := build(t, e, BuildOptions{Force: true, Workers: 1})

	assert.Len(t, res.Compiled(), 2)
	for _, d := range res.Compiled() {
		for _, a := range d.Artifacts {
			assert.False(t, a.Changed, "%s rewritten with identical content", a.Path)
		}
	}
}

func TestBuild_Manifest(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)

	res := build(t, e, BuildOptions{})

	assert.Equal(t, []core.ManifestEntry{
		{Path: "LoginData.swift", Group: "Layouts"},
		{Path: "LoginView.swift", Group: "Layouts"},
		{Path: "settings/SettingsProfileData.swift", Group: "Layouts/settings"},
		{Path: "settings/SettingsProfileView.swift", Group: "Layouts/settings"},
	}, res.Manifest().Entries)
}

func TestBuild_StrictBindings(t *testing.T) {
	src := `{"kind": "Text", "text": "@{missing}"}`

	t.Run("lenient", func(t *testing.T) {
		p := testutil.NewProject(t)
		p.Write("layouts/page.json", src)
		res := build(t, newEngine(t, p, nil), BuildOptions{})

		require.Len(t, res.Compiled(), 1)
		require.Len(t, res.Compiled()[0].Warnings, 1)
		assert.Equal(t, "text", res.Compiled()[0].Warnings[0].Attribute)
	})

	t.Run("strict", func(t *testing.T) {
		p := testutil.NewProject(t)
		p.Write("layouts/page.json", src)
		res := build(t, newEngine(t, p, func(c *Config) { c.StrictBindings = true }), BuildOptions{})

		require.Len(t, res.Failed(), 1)
		assert.Equal(t, core.ErrorKindInvalidAttribute, res.Failed()[0].ErrorKind())
	})
}

func TestBuild_History(t *testing.T) {
	p := newProject(t)
	p.Write("layouts/broken.json", `{"kind": "Text", "style": "missing"}`)
	e := newEngine(t, p, func(c *Config) { c.HistoryPath = p.Path(".leaplayout/history.db") })

	res := build(t, e, BuildOptions{})
	require.NotEmpty(t, res.RunID)

	runs, err := e.History().ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, core.RunStatusPartial, runs[0].Status)
	assert.Equal(t, 3, runs[0].Documents)
	assert.NotNil(t, runs[0].CompletedAt)

	docRuns, err := e.History().GetDocumentRuns(res.RunID)
	require.NoError(t, err)
	require.Len(t, docRuns, 3)
	assert.Equal(t, "broken", docRuns[0].Document)
	assert.Equal(t, core.DocumentStatusFailed, docRuns[0].Status)
	assert.Equal(t, core.ErrorKindNotFound, docRuns[0].ErrorKind)
	assert.Equal(t, core.DocumentStatusSuccess, docRuns[1].Status)
	assert.Equal(t, 2, docRuns[1].Artifacts)
}

func TestBuild_MissingLayoutsDir(t *testing.T) {
	root := t.TempDir()
	e, err := New(Config{LayoutsDir: filepath.Join(root, "nope"), OutputDir: root, CachePath: filepath.Join(root, "cache.yaml")})
	require.NoError(t, err)

	_, err = e.Build(context.Background(), BuildOptions{})
	assert.Error(t, err)
}

func TestBuild_Cancelled(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Build(ctx, BuildOptions{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Failed())
	_, ok := e.Cache().LastBuild()
	assert.False(t, ok)
}

func TestConverters_ReloadChangesFingerprint(t *testing.T) {
	p := newProject(t)
	p.WriteAll(map[string]string{
		"converters/Gauge.star": "def convert(node):\n    return 'Gauge(value: %s)' % node.number('value', '0')\n",
		"layouts/dash.json":     `{"kind": "Gauge", "value": 3}`,
	})
	e := newEngine(t, p, func(c *Config) { c.ConvertersDir = p.Path("converters") })
	require.Len(t, e.Converters(), 1)
	assert.Equal(t, []string{"Gauge"}, e.Registry().Kinds())

	build(t, e, BuildOptions{})
	view, err := os.ReadFile(p.Path("generated/DashView.swift"))
	require.NoError(t, err)
	assert.Contains(t, string(view), "Gauge(value: 3)")

	before := e.Fingerprint()
	p.Write("converters/Gauge.star", "def convert(node):\n    return 'Gauge()'\n")
	require.NoError(t, e.ReloadConverters())
	assert.NotEqual(t, before, e.Fingerprint())

	res := build(t, e, BuildOptions{})
	assert.Len(t, res.Compiled(), 3)
	for _, d := range res.Compiled() {
		assert.Equal(t, core.StaleConfigChanged, d.Reason.Reason)
	}
}

func TestNew_InvalidConverter(t *testing.T) {
	p := newProject(t)
	p.Write("converters/Text.star", "def convert(node):\n    return 'Text()'\n")

	_, err := New(Config{
		LayoutsDir:    p.LayoutsDir(),
		ConvertersDir: p.Path("converters"),
		OutputDir:     p.Path("generated"),
		CachePath:     p.Path("cache.yaml"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in kind")
}

func TestStatus(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{Select: []string{"login"}})

	statuses, err := e.Status()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "login", statuses[0].Document)
	assert.Equal(t, core.StaleUpToDate, statuses[0].Staleness.Reason)
	require.NotNil(t, statuses[0].Entry)
	assert.Equal(t, core.StaleNew, statuses[1].Staleness.Reason)
	assert.Nil(t, statuses[1].Entry)

	require.NoError(t, os.Remove(p.Path("generated/LoginView.swift")))
	statuses, err = e.Status()
	require.NoError(t, err)
	assert.Equal(t, core.Staleness{Reason: core.StaleArtifactMissing, Detail: "LoginView.swift"}, statuses[0].Staleness)
}

func TestDependencies(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	deps, err := e.Dependencies("login")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "doc:login", deps[0].ID)
	assert.Equal(t, []string{"partial:components/_header.json", "style:title"}, deps[0].Dependencies)

	deps, err = e.Dependencies("title")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, []string{"doc:login", "doc:settings/profile"}, deps[0].Dependents)

	_, err = e.Dependencies("nothing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCompile(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)

	res := e.Compile("settings/profile")

	require.NoError(t, res.Err)
	assert.Equal(t, core.DocumentStatusSuccess, res.Status)
	assert.Equal(t, core.StaleForced, res.Reason.Reason)
	assert.Equal(t, []string{"title"}, res.Dependencies.Styles)
	assert.Len(t, res.Artifacts, 2)
}

func TestClean(t *testing.T) {
	p := newProject(t)
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	removed, err := e.Clean()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"LoginData.swift", "LoginView.swift",
		"settings/SettingsProfileData.swift", "settings/SettingsProfileView.swift",
	}, removed)
	assert.NoFileExists(t, p.Path("generated/LoginView.swift"))
	assert.NoFileExists(t, p.Path(".leaplayout/cache.yaml"))
	assert.Empty(t, e.Cache().Entries())

	res := build(t, e, BuildOptions{})
	assert.Len(t, res.Compiled(), 2)
}

func TestGraph_UnusedPartialsAndStyles(t *testing.T) {
	p := newProject(t)
	p.WriteAll(map[string]string{
		"layouts/_footer.json": `{"kind": "Text", "text": "bye"}`,
		"styles/unused.json":   `{"padding": 4}`,
	})
	e := newEngine(t, p, nil)
	build(t, e, BuildOptions{})

	g := e.Graph()
	assert.Equal(t, []string{"partial:_footer.json", "style:unused"}, g.Unused())
	assert.Equal(t, []string{"doc:login"}, g.Dependents("partial:components/_header.json"))
}
