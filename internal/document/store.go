// Package document loads layout, partial, and style documents from disk.
//
// The store is pure: it caches nothing and every call re-reads the file.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

const (
	// Ext is the file extension of every document.
	Ext = ".json"
	// PartialPrefix marks partial-only files.
	PartialPrefix = "_"
)

// Store resolves document names to files under the layouts and styles
// directories.
type Store struct {
	layoutsDir string
	stylesDir  string
}

// NewStore creates a store rooted at the given directories.
func NewStore(layoutsDir, stylesDir string) *Store {
	return &Store{layoutsDir: layoutsDir, stylesDir: stylesDir}
}

// LayoutsDir returns the layouts directory.
func (s *Store) LayoutsDir() string { return s.layoutsDir }

// StylesDir returns the styles directory.
func (s *Store) StylesDir() string { return s.stylesDir }

// Info describes a top-level document on disk.
type Info struct {
	ID      string // slash-separated path without extension
	Path    string // absolute or layouts-relative file path
	ModTime time.Time
}

// DocumentPath returns the file for a top-level document identity.
func (s *Store) DocumentPath(id string) string {
	return filepath.Join(s.layoutsDir, filepath.FromSlash(id)+Ext)
}

// Load reads and parses a top-level document.
func (s *Store) Load(id string) (*core.Node, error) {
	file := s.DocumentPath(id)
	data, err := readFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &core.NotFoundError{Kind: core.NotFoundDocument, Name: id, Document: id, Tried: []string{file}}
		}
		return nil, err
	}
	return ParseNode(data, file)
}

// PartialCandidates returns the layouts-relative files tried for a partial
// name, in lookup order: "dir/_name.json" then "dir/name.json".
func PartialCandidates(name string) []string {
	name = strings.TrimSuffix(path.Clean(strings.TrimPrefix(name, "/")), Ext)
	dir, base := path.Split(name)
	candidates := []string{dir + PartialPrefix + base + Ext}
	if !strings.HasPrefix(base, PartialPrefix) {
		candidates = append(candidates, dir+base+Ext)
	}
	return candidates
}

// Partial is a partial document's raw source.
type Partial struct {
	Name string // requested name
	Rel  string // layouts-relative slash path of the file that matched
	Path string // file path
	Data []byte
}

// LoadPartial reads a partial's raw source without parsing it, trying
// every candidate before failing.
func (s *Store) LoadPartial(name string) (*Partial, error) {
	candidates := PartialCandidates(name)
	tried := make([]string, 0, len(candidates))
	for _, rel := range candidates {
		file := s.PartialPath(rel)
		data, err := readFile(file)
		if err == nil {
			return &Partial{Name: name, Rel: rel, Path: file, Data: data}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		tried = append(tried, file)
	}
	return nil, &core.NotFoundError{Kind: core.NotFoundPartial, Name: name, Tried: tried}
}

// PartialPath returns the file for a layouts-relative partial path.
func (s *Store) PartialPath(rel string) string {
	return filepath.Join(s.layoutsDir, filepath.FromSlash(rel))
}

// StylePath returns the file for a style name.
func (s *Store) StylePath(name string) string {
	return filepath.Join(s.stylesDir, filepath.FromSlash(name)+Ext)
}

// LoadStyle reads a style document's attribute mapping.
func (s *Store) LoadStyle(name string) (*core.Object, error) {
	file := s.StylePath(name)
	data, err := readFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &core.NotFoundError{Kind: core.NotFoundStyle, Name: name, Tried: []string{file}}
		}
		return nil, err
	}
	return Parse(data, file)
}

// List returns every top-level document under the layouts directory,
// sorted by identity. Partial-only files and hidden directories are skipped.
func (s *Store) List() ([]Info, error) {
	var docs []Info
	err := filepath.WalkDir(s.layoutsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.layoutsDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != Ext || strings.HasPrefix(d.Name(), PartialPrefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.layoutsDir, p)
		if err != nil {
			return err
		}
		docs = append(docs, Info{
			ID:      strings.TrimSuffix(filepath.ToSlash(rel), Ext),
			Path:    p,
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("layouts directory %s does not exist", s.layoutsDir)
		}
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// ListPartials returns the layouts-relative paths of every partial-only
// file, sorted.
func (s *Store) ListPartials() ([]string, error) {
	return listFiles(s.layoutsDir, func(rel string) (string, bool) {
		return rel, IsPartialFile(rel)
	})
}

// ListStyles returns the names of every style document, sorted. A missing
// styles directory yields no styles.
func (s *Store) ListStyles() ([]string, error) {
	names, err := listFiles(s.stylesDir, func(rel string) (string, bool) {
		return strings.TrimSuffix(rel, Ext), true
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return names, err
}

// listFiles walks dir for document files and maps each slash-separated
// relative path through keep.
func listFiles(dir string, keep func(rel string) (string, bool)) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != Ext {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if name, ok := keep(filepath.ToSlash(rel)); ok {
			out = append(out, name)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// IsPartialFile reports whether a layouts file is partial-only.
func IsPartialFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), PartialPrefix)
}

// ModTime returns a file's modification time.
func ModTime(file string) (time.Time, error) {
	info, err := os.Stat(file)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func readFile(file string) ([]byte, error) {
	data, err := os.ReadFile(file) //nolint:gosec // paths are derived from project directories
	if err != nil {
		return nil, err
	}
	return data, nil
}
