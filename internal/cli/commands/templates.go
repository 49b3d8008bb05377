package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed all:templates
var templateFS embed.FS

// dotfiles are stored without their leading dot so embed keeps them.
var dotfiles = map[string]string{
	"gitignore": ".gitignore",
	"gitkeep":   ".gitkeep",
}

// scaffoldFile is one file of a project template.
type scaffoldFile struct {
	src string // path inside templateFS
	rel string // slash path relative to the project root
}

// templateFiles lists the files of a named template in walk order.
func templateFiles(name string) ([]scaffoldFile, error) {
	root := path.Join("templates", name)
	if _, err := fs.Stat(templateFS, root); err != nil {
		return nil, fmt.Errorf("unknown template %q", name)
	}

	var files []scaffoldFile
	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, root+"/")
		dir, base := path.Split(rel)
		if dot, ok := dotfiles[base]; ok {
			rel = dir + dot
		}
		files = append(files, scaffoldFile{src: p, rel: rel})
		return nil
	})
	return files, err
}

// scaffold writes a template into targetDir and returns the project paths
// it wrote. Existing files are left alone unless force is set.
func scaffold(name, targetDir string, force bool) ([]string, error) {
	files, err := templateFiles(name)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, f := range files {
		target := filepath.Join(targetDir, filepath.FromSlash(f.rel))
		if !force {
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}
		content, err := templateFS.ReadFile(f.src)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return written, err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return written, err
		}
		written = append(written, f.rel)
	}
	return written, nil
}

// groupTemplateFiles buckets project paths by top-level directory. Files
// outside layouts, styles and converters count as config.
func groupTemplateFiles(files []string) map[string][]string {
	groups := map[string][]string{
		"config":     {},
		"layouts":    {},
		"styles":     {},
		"converters": {},
	}
	for _, f := range files {
		top, _, nested := strings.Cut(filepath.ToSlash(f), "/")
		if _, ok := groups[top]; nested && ok {
			groups[top] = append(groups[top], f)
			continue
		}
		groups["config"] = append(groups["config"], f)
	}
	return groups
}
