// Package atomicfile writes files by renaming a fully written temporary
// file over the destination, so readers never observe partial content.
package atomicfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data to path atomically. On failure the previous
// content of path, if any, is left untouched.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := Stage(path, data, perm)
	if err != nil {
		return err
	}
	return Commit(tmp, path)
}

// Stage writes data to a temporary file next to path and returns its name.
// The caller must Commit or Discard it.
func Stage(path string, data []byte, perm os.FileMode) (string, error) {
	return stage(path, ".tmp-*", data, perm)
}

func stage(path, suffix string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+suffix)
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

// Commit renames a staged file over path.
func Commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Backup copies the regular file at path next to it and returns the
// copy's name. It returns "" when path does not exist or is not a regular
// file, since a rename cannot replace such a path without failing.
func Backup(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is an output file chosen by the caller
	if err != nil {
		return "", err
	}
	return stage(path, ".bak-*", data, info.Mode().Perm())
}

// Restore puts a backup taken by Backup back at path. An empty backup
// means path did not exist before, so path is removed.
func Restore(backup, path string) error {
	if backup == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return os.Rename(backup, path)
}

// Discard removes a staged file or backup. An empty name is ignored.
func Discard(tmp string) {
	if tmp == "" {
		return
	}
	_ = os.Remove(tmp)
}

// Unchanged reports whether path already holds exactly data.
func Unchanged(path string, data []byte) bool {
	existing, err := os.ReadFile(path) //nolint:gosec // path is an output file chosen by the caller
	if err != nil {
		return false
	}
	return bytes.Equal(existing, data)
}
