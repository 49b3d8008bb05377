// Package emit renders converted documents as SwiftUI source files and
// writes them to the output directory.
//
// Each document produces two artifacts: an observable data class holding
// the declared binding slots, and a view struct with an actions protocol.
package emit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/leapstack-labs/leaplayout/internal/atomicfile"
	"github.com/leapstack-labs/leaplayout/internal/binding"
	"github.com/leapstack-labs/leaplayout/internal/convert"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Header starts every generated file.
const Header = "// Code generated by leaplayout. DO NOT EDIT."

// FormatVersion changes whenever generated output changes shape for the
// same input. It is part of the build cache fingerprint.
const FormatVersion = "swiftui/1"

// Target configures the generated code.
type Target struct {
	Module      string // extra module imported by every file, e.g. the runtime support package
	ViewSuffix  string
	DataSuffix  string
	GroupPrefix string
}

// DefaultTarget returns the default SwiftUI target settings.
func DefaultTarget() Target {
	return Target{ViewSuffix: "View", DataSuffix: "Data", GroupPrefix: "Layouts"}
}

// Input is a converted document ready to be rendered.
type Input struct {
	Document string
	Source   string // layouts-relative source path, for the header
	Body     *convert.Fragment
	Bindings *binding.Result
}

// File is one rendered artifact.
type File struct {
	core.Artifact
	Content []byte
}

// Emitter renders and writes artifacts.
type Emitter struct {
	outputDir string
	target    Target
	logger    *slog.Logger
}

// New creates an emitter writing below outputDir.
func New(outputDir string, target Target, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	def := DefaultTarget()
	if target.ViewSuffix == "" {
		target.ViewSuffix = def.ViewSuffix
	}
	if target.DataSuffix == "" {
		target.DataSuffix = def.DataSuffix
	}
	return &Emitter{outputDir: outputDir, target: target, logger: logger}
}

// OutputDir returns the directory artifacts are written to.
func (e *Emitter) OutputDir() string { return e.outputDir }

// Target returns the emitter's target settings.
func (e *Emitter) Target() Target { return e.target }

// Names returns the type names generated for doc.
func (e *Emitter) Names(doc string) (view, data, actions string) {
	base := TypeName(doc)
	return base + e.target.ViewSuffix, base + e.target.DataSuffix, base + "Actions"
}

// ArtifactPaths returns the output-relative paths generated for doc.
func (e *Emitter) ArtifactPaths(doc string) (data, view string) {
	viewType, dataType, _ := e.Names(doc)
	dir := path.Dir(doc)
	return path.Join(dir, dataType+".swift"), path.Join(dir, viewType+".swift")
}

// Render produces the data and view files for in.
func (e *Emitter) Render(in Input) ([]File, error) {
	if in.Body == nil {
		return nil, fmt.Errorf("render %s: no body", in.Document)
	}
	bindings := in.Bindings
	if bindings == nil {
		bindings = &binding.Result{}
	}
	dataPath, viewPath := e.ArtifactPaths(in.Document)
	group := GroupName(e.target.GroupPrefix, in.Document)

	return []File{
		{
			Artifact: core.Artifact{Document: in.Document, Role: core.ArtifactData, Path: dataPath, Group: group},
			Content:  e.renderData(in, bindings),
		},
		{
			Artifact: core.Artifact{Document: in.Document, Role: core.ArtifactView, Path: viewPath, Group: group},
			Content:  e.renderView(in, bindings),
		},
	}, nil
}

func (e *Emitter) header(p *printer, in Input) {
	p.line(Header)
	if in.Source != "" {
		p.line("// Source: %s", in.Source)
	}
	p.blank()
	p.line("import SwiftUI")
	if e.target.Module != "" {
		p.line("import %s", e.target.Module)
	}
	p.blank()
}

func (e *Emitter) renderData(in Input, b *binding.Result) []byte {
	_, dataType, _ := e.Names(in.Document)
	p := newPrinter()
	e.header(p, in)

	p.block("final class "+dataType+": ObservableObject", func() {
		for _, d := range b.Declarations {
			typ := convert.SwiftType(d.Class)
			value := convert.ZeroValue(typ)
			if d.HasDefault && d.Default != nil {
				value = convert.DefaultLiteral(d.Default, typ)
			}
			p.line("@Published var %s: %s = %s", convert.Ident(d.Name), typ, value)
		}
		if len(b.Declarations) > 0 {
			p.blank()
		}
		p.line("init() {}")
		p.blank()

		p.block("init(map: [String: Any])", func() {
			p.line("update(from: map)")
		})
		p.blank()

		p.block("func update(from map: [String: Any])", func() {
			for _, d := range b.Declarations {
				p.line("if let v = map[%s] as? %s { %s = v }",
					convert.SwiftString(d.Name), convert.SwiftType(d.Class), convert.Ident(d.Name))
			}
		})
		p.blank()

		p.block("func toMap() -> [String: Any]", func() {
			if len(b.Declarations) == 0 {
				p.line("[:]")
				return
			}
			p.line("[")
			p.indent()
			for _, d := range b.Declarations {
				p.line("%s: %s,", convert.SwiftString(d.Name), convert.Ident(d.Name))
			}
			p.dedent()
			p.line("]")
		})
	})
	return p.Bytes()
}

func (e *Emitter) renderView(in Input, b *binding.Result) []byte {
	viewType, dataType, actionsType := e.Names(in.Document)
	p := newPrinter()
	e.header(p, in)

	p.block("protocol "+actionsType+": AnyObject", func() {
		for _, h := range b.Handlers() {
			p.line("func %s()", convert.Ident(h))
		}
	})
	p.blank()

	p.block("struct "+viewType+": View", func() {
		p.line("@ObservedObject var data: %s", dataType)
		p.line("var actions: (any %s)?", actionsType)
		p.blank()
		p.block("var body: some View", func() {
			p.fragment(in.Body)
		})
	})
	return p.Bytes()
}

// Write writes files below the output directory. Every changed file is
// staged and its previous content backed up before any is committed. If a
// commit fails, files already committed are rolled back, so a failed write
// leaves all previous artifacts in place. Files whose content is unchanged
// are not rewritten and are reported with Changed false.
func (e *Emitter) Write(files []File) ([]core.Artifact, error) {
	type staged struct {
		tmp, bak, dest string
		idx            int
	}
	var pending []staged
	discard := func() {
		for _, s := range pending {
			atomicfile.Discard(s.tmp)
			atomicfile.Discard(s.bak)
		}
	}

	out := make([]core.Artifact, len(files))
	for i, f := range files {
		out[i] = f.Artifact
		dest := filepath.Join(e.outputDir, filepath.FromSlash(f.Path))
		if atomicfile.Unchanged(dest, f.Content) {
			continue
		}
		tmp, err := atomicfile.Stage(dest, f.Content, 0o644)
		if err != nil {
			discard()
			return nil, &core.WriteFailureError{Path: dest, Err: err}
		}
		bak, err := atomicfile.Backup(dest)
		if err != nil {
			atomicfile.Discard(tmp)
			discard()
			return nil, &core.WriteFailureError{Path: dest, Err: err}
		}
		pending = append(pending, staged{tmp: tmp, bak: bak, dest: dest, idx: i})
	}

	for i, s := range pending {
		if err := atomicfile.Commit(s.tmp, s.dest); err != nil {
			errs := []error{&core.WriteFailureError{Path: s.dest, Err: err}}
			for _, done := range pending[:i] {
				if rerr := atomicfile.Restore(done.bak, done.dest); rerr != nil {
					errs = append(errs, &core.WriteFailureError{Path: done.dest, Err: rerr})
				}
			}
			atomicfile.Discard(s.bak)
			for _, rest := range pending[i+1:] {
				atomicfile.Discard(rest.tmp)
				atomicfile.Discard(rest.bak)
			}
			e.logger.Warn("rolled back artifacts after failed write", "path", s.dest, "error", err)
			return nil, errors.Join(errs...)
		}
	}

	for _, s := range pending {
		atomicfile.Discard(s.bak)
		out[s.idx].Changed = true
		e.logger.Debug("wrote artifact", "path", s.dest)
	}
	return out, nil
}

// Remove deletes artifacts recorded for a document that no longer exists.
// Missing files are ignored.
func (e *Emitter) Remove(paths []string) error {
	var errs []error
	for _, rel := range paths {
		p := filepath.Join(e.outputDir, filepath.FromSlash(rel))
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, &core.WriteFailureError{Path: p, Err: err})
			continue
		}
		e.logger.Debug("removed artifact", "path", p)
	}
	return errors.Join(errs...)
}

// RenderFragment prints a fragment on its own, as it appears inside a body.
func RenderFragment(f *convert.Fragment) string {
	p := newPrinter()
	p.fragment(f)
	return string(bytes.TrimRight(p.Bytes(), "\n"))
}
