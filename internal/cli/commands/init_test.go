package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name: "init empty directory",
			wantFiles: []string{
				"leaplayout.yaml",
				".gitignore",
				"layouts/home.json",
				"styles/title.json",
				"converters/.gitkeep",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leaplayout.yaml"), []byte("existing"), 0o600))
			},
			wantErr: true,
		},
		{
			name: "init existing yml config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leaplayout.yml"), []byte("existing"), 0o600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leaplayout.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"leaplayout.yaml", "layouts/home.json"},
		},
		{
			name: "init example",
			args: []string{"--example"},
			wantFiles: []string{
				"leaplayout.yaml",
				"layouts/login.json",
				"layouts/settings/profile.json",
				"layouts/components/_header.json",
				"styles/primaryButton.json",
				"converters/Rating.star",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "app")
			require.NoError(t, os.MkdirAll(dir, 0o750))
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{dir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				return
			}
			require.NoError(t, err)
			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(f)))
			}
			assert.Contains(t, buf.String(), "project initialized")
		})
	}
}

func TestInit_ForceOverwritesConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaplayout.yaml"), []byte("existing"), 0o600))

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir, "--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "leaplayout.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "layouts_dir: layouts")
}

func TestGroupTemplateFiles(t *testing.T) {
	groups := groupTemplateFiles([]string{
		"leaplayout.yaml", ".gitignore",
		"layouts/home.json", "layouts/components/_header.json",
		"styles/title.json", "converters/Rating.star",
	})
	assert.Equal(t, []string{"leaplayout.yaml", ".gitignore"}, groups["config"])
	assert.Equal(t, []string{"layouts/home.json", "layouts/components/_header.json"}, groups["layouts"])
	assert.Equal(t, []string{"styles/title.json"}, groups["styles"])
	assert.Equal(t, []string{"converters/Rating.star"}, groups["converters"])
}

func TestTemplateFiles(t *testing.T) {
	files, err := templateFiles("minimal")
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.rel)
	}
	assert.Contains(t, rels, ".gitignore")
	assert.Contains(t, rels, "converters/.gitkeep")
	assert.NotContains(t, rels, "gitignore")

	_, err = templateFiles("nope")
	require.Error(t, err)
}

func TestScaffold_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layouts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layouts", "home.json"), []byte("{}"), 0o600))

	written, err := scaffold("minimal", dir, false)
	require.NoError(t, err)
	assert.NotContains(t, written, "layouts/home.json")
	assert.Contains(t, written, "leaplayout.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "layouts", "home.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
