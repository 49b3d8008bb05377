package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"text", ModeText},
		{"TEXT", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, ModeText, NewRendererWithTTY(&out, &errOut, true, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&out, &errOut, false, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&out, &errOut, true, ModeJSON).EffectiveMode())
	assert.False(t, NewRenderer(&out, &errOut, ModeAuto).IsTTY(), "buffers are never terminals")
}

func TestRenderer_Markdown(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)

	r.Header(2, "Build")
	r.KeyValue("Compiled", "3")
	r.StatusLine("login", "success", "12ms")
	r.StatusLine("broken", "failed", "parse error")
	r.Warning("careful")

	got := out.String()
	assert.Contains(t, got, "## Build\n")
	assert.Contains(t, got, "- **Compiled**: 3")
	assert.Contains(t, got, "- [ok] login 12ms")
	assert.Contains(t, got, "- [fail] broken parse error")
	assert.Equal(t, "[warn] careful\n", errOut.String())
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, false, ModeMarkdown)
	r.Table([]string{"Document", "State"}, [][]string{{"login", "new"}})

	got := out.String()
	assert.Contains(t, got, "| Document | State |")
	assert.Contains(t, got, "| login | new |")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, false, ModeJSON)
	require.NoError(t, r.JSON(StatusOutput{Documents: []DocumentStatus{{Document: "login", Stale: true, Reason: "new"}}}))

	var decoded StatusOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded.Documents, 1)
	assert.Equal(t, "login", decoded.Documents[0].Document)
	assert.Empty(t, decoded.LastBuild)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Sub", FormatHeader(3, "Sub"))
	assert.Equal(t, "- **k**: v", FormatKeyValue("k", "v"))
	assert.Equal(t, "```swift\nlet x = 1\n```", FormatCodeBlock("swift", "let x = 1\n"))
}
