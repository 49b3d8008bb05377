package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, WriteFile(path, []byte("one"), 0o644))
	require.NoError(t, WriteFile(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestStage_DiscardKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(path, []byte("keep"), 0o644))

	tmp, err := Stage(path, []byte("draft"), 0o644)
	require.NoError(t, err)
	Discard(tmp)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
	assert.NoFileExists(t, tmp)
}

func TestUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	assert.False(t, Unchanged(path, []byte("x")))

	require.NoError(t, WriteFile(path, []byte("x"), 0o644))
	assert.True(t, Unchanged(path, []byte("x")))
	assert.False(t, Unchanged(path, []byte("y")))
}

func TestBackupRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, WriteFile(path, []byte("old"), 0o644))

	bak, err := Backup(path)
	require.NoError(t, err)
	require.NotEmpty(t, bak)

	require.NoError(t, WriteFile(path, []byte("new"), 0o644))
	require.NoError(t, Restore(bak, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.NoFileExists(t, bak)
}

func TestBackup_MissingOrDirectory(t *testing.T) {
	dir := t.TempDir()

	bak, err := Backup(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, bak)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	bak, err = Backup(sub)
	require.NoError(t, err)
	assert.Empty(t, bak)

	created := filepath.Join(dir, "created.txt")
	require.NoError(t, WriteFile(created, []byte("x"), 0o644))
	require.NoError(t, Restore("", created))
	assert.NoFileExists(t, created)
}
