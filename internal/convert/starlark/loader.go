package starlark

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leaplayout/internal/convert"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Ext is the converter script extension.
const Ext = ".star"

// Module is a loaded converter script.
type Module struct {
	Kind   string
	Path   string
	Digest string // sha256 of the script source
	fn     starlark.Callable
}

// LoadError describes a converter script that could not be loaded.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("converters/%s: %s", filepath.Base(e.File), e.Message)
}

// Load executes every .star file in dir. A missing directory yields no
// modules.
func Load(dir string) ([]*Module, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("access converters directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("converters path is not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("scan converters directory: %w", err)
	}
	sort.Strings(files)

	modules := make([]*Module, 0, len(files))
	for _, file := range files {
		m, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func loadFile(path string) (*Module, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob inside the converters directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("read file: %v", err)}
	}

	kind := strings.TrimSuffix(filepath.Base(path), Ext)
	if !core.IsIdentifier(kind) {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("%q is not a valid kind name", kind)}
	}

	thread := &starlark.Thread{
		Name:  "load:" + kind,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFile(thread, path, content, predeclared()) //nolint:staticcheck // SA1019: ExecFileOptions needs syntax options we do not use
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("starlark execution error: %v", err)}
	}

	fn, ok := globals["convert"].(starlark.Callable)
	if !ok {
		return nil, &LoadError{File: path, Message: "script must define convert(node)"}
	}

	sum := sha256.Sum256(content)
	return &Module{
		Kind:   kind,
		Path:   path,
		Digest: hex.EncodeToString(sum[:]),
		fn:     fn,
	}, nil
}

// Register loads dir and registers each script's converter.
// All registration errors are reported together.
func Register(reg *convert.Registry, dir string) ([]*Module, error) {
	modules, err := Load(dir)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, m := range modules {
		if err := reg.Register(m.Kind, m.Path, m); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return modules, nil
}

func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"swift_string": starlark.NewBuiltin("swift_string", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
				return nil, err
			}
			return starlark.String(convert.SwiftString(s)), nil
		}),
		"swift_literal": starlark.NewBuiltin("swift_literal", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			gv, err := ToGo(v)
			if err != nil {
				return nil, err
			}
			return starlark.String(convert.SwiftLiteral(gv)), nil
		}),
	}
}
