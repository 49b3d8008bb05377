package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Project is a throwaway layout project rooted in a temp directory.
type Project struct {
	t    testing.TB
	Root string
}

// NewProject creates an empty project with layouts/ and styles/ directories.
func NewProject(t testing.TB) *Project {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"layouts", "styles"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return &Project{t: t, Root: root}
}

// LayoutsDir returns the project's layouts directory.
func (p *Project) LayoutsDir() string { return filepath.Join(p.Root, "layouts") }

// StylesDir returns the project's styles directory.
func (p *Project) StylesDir() string { return filepath.Join(p.Root, "styles") }

// Path joins rel onto the project root.
func (p *Project) Path(rel string) string { return filepath.Join(p.Root, filepath.FromSlash(rel)) }

// Write writes content to rel (relative to the project root), creating
// parent directories.
func (p *Project) Write(rel, content string) string {
	p.t.Helper()
	path := p.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		p.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		p.t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// WriteAll writes every rel -> content pair.
func (p *Project) WriteAll(files map[string]string) {
	p.t.Helper()
	for rel, content := range files {
		p.Write(rel, content)
	}
}

// Touch moves rel's modification time forward by d.
func (p *Project) Touch(rel string, d time.Duration) {
	p.t.Helper()
	path := p.Path(rel)
	info, err := os.Stat(path)
	if err != nil {
		p.t.Fatalf("stat %s: %v", rel, err)
	}
	mt := info.ModTime().Add(d)
	if err := os.Chtimes(path, mt, mt); err != nil {
		p.t.Fatalf("chtimes %s: %v", rel, err)
	}
}

// Remove deletes rel.
func (p *Project) Remove(rel string) {
	p.t.Helper()
	if err := os.Remove(p.Path(rel)); err != nil {
		p.t.Fatalf("remove %s: %v", rel, err)
	}
}
