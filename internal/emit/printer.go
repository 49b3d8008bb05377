package emit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplayout/internal/convert"
)

const indentSize = 4

// printer writes Swift source with block indentation.
type printer struct {
	output      bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter() *printer {
	return &printer{atLineStart: true}
}

// Bytes returns the printed source with exactly one trailing newline.
func (p *printer) Bytes() []byte {
	return []byte(strings.TrimRight(p.output.String(), "\n") + "\n")
}

func (p *printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *printer) line(format string, args ...any) {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	p.write(format)
	p.writeln()
}

func (p *printer) blank() {
	p.writeln()
}

func (p *printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *printer) indent() {
	p.depth++
}

func (p *printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// block prints open, runs body one level deeper, then prints the closing brace.
func (p *printer) block(open string, body func()) {
	p.line(open + " {")
	p.indent()
	body()
	p.dedent()
	p.line("}")
}

// fragment prints a converted view expression.
func (p *printer) fragment(f *convert.Fragment) {
	if f.Comment != "" {
		p.line("// %s", f.Comment)
	}
	if f.HasBlock() {
		open := f.Head + " {"
		if f.Params != "" {
			open += " " + f.Params
		}
		p.line(open)
		p.indent()
		for _, c := range f.Children {
			p.fragment(c)
		}
		p.dedent()
		p.line("}")
	} else {
		p.line(f.Head)
	}

	if len(f.Modifiers) > 0 {
		p.indent()
		for _, m := range f.Modifiers {
			p.line(m)
		}
		p.dedent()
	}
}
