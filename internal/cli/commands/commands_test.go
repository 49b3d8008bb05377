package commands

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/cli/testutil"
	"github.com/leapstack-labs/leaplayout/internal/engine"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewBuildCommand(), "build", []string{"force", "select", "dependents-of", "workers", "json", "manifest-out"}},
		{NewStatusCommand(), "status", []string{"stale"}},
		{NewDepsCommand(), "deps [document|partial|style]", nil},
		{NewWatchCommand(), "watch", []string{"debounce", "json"}},
		{NewHistoryCommand(), "history [run-id]", []string{"limit"}},
		{NewCleanCommand(), "clean", nil},
		{NewInitCommand(), "init [directory]", []string{"force", "example"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestBuildCommand_Alias(t *testing.T) {
	cmd := NewBuildCommand()
	assert.Equal(t, []string{"compile"}, cmd.Aliases)
}

func sampleBuildResult() *engine.BuildResult {
	return &engine.BuildResult{
		RunID:    "run-1",
		Duration: 42 * time.Millisecond,
		Documents: []*engine.DocumentResult{
			{
				Document:  "login",
				Status:    core.DocumentStatusSuccess,
				Reason:    core.Staleness{Reason: core.StaleModified},
				Artifacts: []core.Artifact{{Path: "LoginData.swift", Group: "Layouts"}, {Path: "LoginView.swift", Group: "Layouts"}},
				Warnings: []*core.InvalidAttributeError{
					{Document: "login", NodePath: "$.child[1]", Attribute: "text", Msg: "undeclared binding"},
				},
			},
			{
				Document: "broken",
				Status:   core.DocumentStatusFailed,
				Reason:   core.Staleness{Reason: core.StaleNew},
				Err:      &core.NotFoundError{Kind: core.NotFoundStyle, Name: "missing"},
			},
			{
				Document: "settings/profile",
				Status:   core.DocumentStatusSkipped,
				Reason:   core.Staleness{Reason: core.StaleUpToDate},
			},
		},
		Pruned: []string{"old"},
	}
}

func TestRenderBuildText(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	renderBuildText(tr.Renderer, sampleBuildResult(), "manifest.json")

	out := tr.Output()
	assert.Contains(t, out, "## Build")
	assert.Contains(t, out, "- [warn] login modified, 1 warning(s)")
	assert.Contains(t, out, `- [fail] broken style "missing" not found`)
	assert.Contains(t, out, "- [skip] settings/profile up-to-date")
	assert.Contains(t, out, "pruned old")
	assert.Contains(t, out, "- **Compiled**: 1")
	assert.Contains(t, out, "- **Failed**: 1")
	assert.Contains(t, out, "- **Manifest**: manifest.json")
	assert.Contains(t, tr.ErrorOutput(), "login: ")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestRenderBuildJSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	renderBuildJSON(tr.Renderer, sampleBuildResult())

	lines := strings.Split(strings.TrimSpace(tr.Output()), "\n")
	require.Len(t, lines, 4)

	var events []output.BuildEvent
	for _, line := range lines {
		var e output.BuildEvent
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		assert.NotEmpty(t, e.Timestamp)
		events = append(events, e)
	}

	assert.Equal(t, "document_complete", events[0].Event)
	assert.Equal(t, []string{"LoginData.swift", "LoginView.swift"}, events[0].Artifacts)
	assert.Len(t, events[0].Warnings, 1)
	assert.Equal(t, "not-found", events[1].ErrorKind)
	assert.Equal(t, "build_complete", events[3].Event)
	assert.Equal(t, "partial", events[3].Status)
	assert.Equal(t, 1, events[3].Compiled)
	assert.Equal(t, 1, events[3].Failed)
	assert.Equal(t, 1, events[3].Skipped)
	assert.Equal(t, []string{"old"}, events[3].Pruned)
}

func TestRenderDeps(t *testing.T) {
	nodes := []engine.Deps{
		{ID: "doc:login", Dependencies: []string{"partial:components/_header.json", "style:title"}},
		{ID: "style:title", Dependents: []string{"doc:login"}},
	}

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderDeps(tr.Renderer, nodes, true, []string{"style:unused"}))
	out := tr.Output()
	assert.Contains(t, out, "- **doc:login**: partial:components/_header.json, style:title")
	assert.Contains(t, out, "- **style:title**: read by doc:login")
	assert.Contains(t, out, "Unused: style:unused")

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, renderDeps(tr.Renderer, nodes, false, nil))
	var decoded []output.DepsNode
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, []string{}, decoded[0].Dependents)
}

func TestRenderRuns(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(1500 * time.Millisecond)
	runs := []*core.BuildRun{
		{ID: "r2", Status: core.RunStatusPartial, Documents: 3, StartedAt: started, CompletedAt: &completed, Error: "1 document(s) failed"},
		{ID: "r1", Status: core.RunStatusRunning, Documents: 1, StartedAt: started},
	}

	tr := testutil.NewTestRendererMarkdown()
	require.NoError(t, renderRuns(tr.Renderer, runs))
	out := tr.Output()
	assert.Contains(t, out, "## Build History")
	assert.Contains(t, out, "| r2 | partial | 3 | 2026-03-01T10:00:00Z | 1.5s |")
	assert.Contains(t, out, "| r1 | running | 1 | 2026-03-01T10:00:00Z | - |")

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, renderRuns(tr.Renderer, runs))
	var infos []output.RunInfo
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "2026-03-01T10:00:01Z", infos[0].CompletedAt)
	assert.Empty(t, infos[1].CompletedAt)

	tr = testutil.NewTestRendererMarkdown()
	require.NoError(t, renderRuns(tr.Renderer, nil))
	assert.Contains(t, tr.Output(), "No builds recorded yet")
}

func TestWatchReporter(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	report := watchReporter(t.Context(), tr.Renderer, false)

	report(&engine.BuildResult{Documents: []*engine.DocumentResult{
		{Document: "login", Status: core.DocumentStatusSkipped},
	}}, nil)
	assert.Empty(t, tr.Output(), "no-op rebuilds stay quiet")

	report(nil, errors.New("converter reload failed"))
	assert.Contains(t, tr.ErrorOutput(), "converter reload failed")

	report(sampleBuildResult(), nil)
	assert.Contains(t, tr.Output(), "## Build")
}

func TestTrimAll(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, trimAll([]string{" a", "", "b ", "  "}))
	assert.Nil(t, trimAll(nil))
}
