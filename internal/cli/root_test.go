package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/cli/testutil"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// run executes the root command against a project and returns stdout and stderr.
func run(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--project-dir", root}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// touch moves a file's mtime past any compile that already happened.
func touch(t *testing.T, path string) {
	t.Helper()
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
}

func TestRoot_BuildStatusDepsHistoryClean(t *testing.T) {
	root := testutil.SetupTestProject(t)

	out, _, err := run(t, root, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "- [ok] login new")
	assert.Contains(t, out, "- [ok] settings/profile new")
	assert.FileExists(t, filepath.Join(root, "generated", "LoginView.swift"))
	assert.FileExists(t, filepath.Join(root, "generated", "settings", "SettingsProfileData.swift"))

	out, _, err = run(t, root, "status", "-o", "json")
	require.NoError(t, err)
	var status output.StatusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	require.Len(t, status.Documents, 2)
	for _, d := range status.Documents {
		assert.False(t, d.Stale, d.Document)
		assert.Equal(t, string(core.StaleUpToDate), d.Reason)
	}
	assert.NotEmpty(t, status.LastBuild)

	testutil.WriteFile(t, root, "styles/title.json", `{"fontSize": 30}`)
	touch(t, filepath.Join(root, "styles", "title.json"))

	out, _, err = run(t, root, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "| login | stale | dependency-changed |")

	out, _, err = run(t, root, "deps", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "- **doc:login**: partial:components/_header.json, style:title")

	out, _, err = run(t, root, "deps", "title", "-o", "json")
	require.NoError(t, err)
	var nodes []output.DepsNode
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"doc:login", "doc:settings/profile"}, nodes[0].Dependents)

	out, _, err = run(t, root, "build", "--json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "start, two documents, complete")
	var done output.BuildEvent
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &done))
	assert.Equal(t, "build_complete", done.Event)
	assert.Equal(t, 2, done.Compiled)

	out, _, err = run(t, root, "history", "-o", "json")
	require.NoError(t, err)
	var runs []output.RunInfo
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "completed", runs[0].Status)

	out, _, err = run(t, root, "history", runs[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "| login | success | dependency-changed |")

	out, _, err = run(t, root, "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 4 generated file(s)")
	assert.NoFileExists(t, filepath.Join(root, "generated", "LoginView.swift"))
}

func TestRoot_BuildFailureReturnsError(t *testing.T) {
	root := testutil.SetupTestProject(t)
	testutil.WriteFile(t, root, "layouts/broken.json", `{"kind": "Text", "style": "missing"}`)

	out, _, err := run(t, root, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed")
	assert.Contains(t, out, `- [fail] broken style "missing" not found`)
	assert.Contains(t, out, "- [ok] login")
}

func TestRoot_BuildSelectAndManifest(t *testing.T) {
	root := testutil.SetupTestProject(t)
	manifest := filepath.Join(root, "out", "manifest.json")

	_, _, err := run(t, root, "build", "--select", "settings/profile", "--manifest-out", manifest)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(root, "generated", "LoginView.swift"))

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var m core.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []core.ManifestEntry{
		{Path: "settings/SettingsProfileData.swift", Group: "Layouts/settings"},
		{Path: "settings/SettingsProfileView.swift", Group: "Layouts/settings"},
	}, m.Entries)

	_, _, err = run(t, root, "compile", "--select", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRoot_DependentsOf(t *testing.T) {
	root := testutil.SetupTestProject(t)
	_, _, err := run(t, root, "build")
	require.NoError(t, err)

	out, _, err := run(t, root, "build", "--dependents-of", "components/header", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"document":"login"`)
	assert.NotContains(t, out, `"document":"settings/profile"`)
}

func TestRoot_FlagOverridesConfig(t *testing.T) {
	root := testutil.SetupTestProject(t)
	outDir := filepath.Join(t.TempDir(), "swift")

	_, _, err := run(t, root, "build", "--output-dir", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "LoginView.swift"))
	assert.NoDirExists(t, filepath.Join(root, "generated"))
}

func TestRoot_MissingLayoutsDir(t *testing.T) {
	root := t.TempDir()
	_, _, err := run(t, root, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layouts directory does not exist")
}

func TestRoot_CommandsWithoutProject(t *testing.T) {
	root := t.TempDir()

	out, _, err := run(t, root, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leaplayout v"+Version)

	out, _, err = run(t, root, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leaplayout")

	_, _, err = run(t, root, "init", filepath.Join(root, "app"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "app", "leaplayout.yaml"))
}

func TestRoot_Verbose(t *testing.T) {
	root := testutil.SetupTestProject(t)
	_, errOut, err := run(t, root, "build", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using config file")
	assert.Contains(t, errOut, "level=DEBUG")
}
