// Package parser builds syntax trees from VHDL source text.
//
// It covers the subset of VHDL the analyzer reasons about: context clauses,
// entities, architectures, packages, processes and their sequential
// statements, instantiations, generate and block statements and concurrent
// assignments. Subprogram bodies and configurations are skipped.
package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

// keywords are the VHDL-2008 reserved words, without the PSL ones, which
// older code commonly uses as identifiers.
var keywords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`abs access after alias all and architecture
		array assert attribute begin block body buffer bus case component
		configuration constant context disconnect downto else elsif end entity
		exit file for function generate generic group guarded if impure in
		inertial inout is label library linkage literal loop map mod nand new
		next nor not null of on open or others out package port postponed
		procedure process protected pure range record register reject rem
		report return rol ror select severity shared signal sla sll sra srl
		subtype then to transport type unaffected units until use variable wait
		when while with xnor xor`) {
		keywords[w] = true
	}
}

type parser struct {
	path      string
	text      string
	toks      []token
	pos       int
	file      *ast.File
	libraries map[string]bool
}

// Parse builds the tree of one design file. Syntax errors are returned as
// *Error.
func Parse(path, text string) (f *ast.File, err error) {
	toks, err := tokenize(path, text)
	if err != nil {
		return nil, err
	}
	p := &parser{
		path:      path,
		text:      text,
		toks:      toks,
		file:      ast.NewFile(path, text),
		libraries: map[string]bool{"work": true, "std": true, "ieee": true},
	}
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			f, err = nil, perr
		}
	}()
	p.designFile()
	return p.file, nil
}

// ParseFile reads and parses a file from disk.
func ParseFile(path string) (*ast.File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(path, string(content))
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) prev() token { return p.toks[p.pos-1] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) is(words ...string) bool {
	t := p.peek()
	for _, w := range words {
		if t.lower == w {
			return true
		}
	}
	return false
}

func (p *parser) accept(words ...string) bool {
	if p.is(words...) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(word string) token {
	if !p.is(word) {
		p.fail("expected %q, found %s", word, describe(p.peek()))
	}
	return p.next()
}

func (p *parser) isIdent() bool {
	t := p.peek()
	return t.kind == tIdent && !keywords[t.lower]
}

func (p *parser) ident() token {
	if !p.isIdent() {
		p.fail("expected identifier, found %s", describe(p.peek()))
	}
	return p.next()
}

func (p *parser) identList() []token {
	names := []token{p.ident()}
	for p.accept(",") {
		names = append(names, p.ident())
	}
	return names
}

// selectedName parses name {. name}, allowing all as the last part.
func (p *parser) selectedName() []string {
	parts := []string{p.ident().text}
	for p.accept(".") {
		if p.accept("all") {
			parts = append(parts, "all")
			break
		}
		parts = append(parts, p.ident().text)
	}
	return parts
}

// labelled consumes a statement label if one is present.
func (p *parser) labelled() string {
	if p.isIdent() && p.peekAt(1).text == ":" {
		label := p.next().text
		p.next()
		return label
	}
	return ""
}

func (p *parser) fail(format string, args ...any) {
	panic(newError(p.path, p.text, p.peek().offset, fmt.Sprintf(format, args...)))
}

// finish extends n's range to the end of the last consumed token.
func (p *parser) finish(n ast.Node) {
	n.Range().End.SetOffset(p.prev().end())
}

// endOf parses `end [words] [name] ;`.
func (p *parser) endOf(words ...string) {
	p.expect("end")
	for _, w := range words {
		p.accept(w)
	}
	if p.isIdent() || p.peek().kind == tString {
		p.next()
	}
	p.expect(";")
}

// skipPast consumes tokens up to and including the next occurrence of word
// outside brackets.
func (p *parser) skipPast(word string) {
	p.scanExpr(func(t token) bool { return t.lower == word })
	p.expect(word)
}

func (p *parser) designFile() {
	for p.peek().kind != tEOF {
		switch {
		case p.is("library"):
			p.libraryClause()
		case p.is("use"):
			p.useClause(p.file)
		case p.is("context"):
			p.contextClause()
		case p.is("entity"):
			p.entity()
		case p.is("architecture"):
			p.architecture()
		case p.is("package"):
			p.packageUnit()
		case p.is("configuration"):
			p.configuration()
		default:
			p.fail("expected a design unit, found %s", describe(p.peek()))
		}
	}
}

func (p *parser) libraryClause() {
	p.expect("library")
	for _, name := range p.identList() {
		p.file.Libraries = append(p.file.Libraries, name.text)
		p.libraries[name.lower] = true
	}
	p.expect(";")
}

func (p *parser) useClause(parent ast.Node) {
	p.expect("use")
	for {
		start := p.peek()
		u := ast.NewUseClause(parent, start.offset, start.offset)
		parts := p.selectedName()
		u.Library = parts[0]
		if len(parts) > 1 {
			u.Package = parts[1]
		}
		if len(parts) > 2 {
			u.Item = strings.Join(parts[2:], ".")
		}
		p.finish(u)
		p.file.Uses = append(p.file.Uses, u)
		if !p.accept(",") {
			break
		}
	}
	p.expect(";")
}

// contextClause skips a context reference or context declaration.
func (p *parser) contextClause() {
	p.expect("context")
	p.selectedName()
	for p.accept(",") {
		p.selectedName()
	}
	if p.accept(";") {
		return
	}
	p.expect("is")
	for !p.is("end") {
		if p.peek().kind == tEOF {
			p.fail("unterminated context declaration")
		}
		switch {
		case p.is("library"):
			p.libraryClause()
		default:
			p.skipPast(";")
		}
	}
	p.endOf("context")
}

func (p *parser) entity() {
	start := p.expect("entity")
	if p.file.Entity != nil {
		panic(newError(p.path, p.text, start.offset, "multiple entities in one file are not supported"))
	}
	e := ast.NewEntity(p.file, start.offset, start.offset)
	p.file.Entity = e
	e.Name = p.ident().text
	p.expect("is")
	if p.accept("generic") {
		e.Generics = p.generics(e)
		p.expect(";")
	}
	if p.accept("port") {
		e.Ports = p.ports(e)
		p.expect(";")
	}
	// The entity declarative part and passive statements are not modelled.
	for !p.is("end") {
		if p.peek().kind == tEOF {
			p.fail("unterminated entity %s", e.Name)
		}
		if !p.accept("begin") {
			p.skipPast(";")
		}
	}
	p.endOf("entity")
	p.finish(e)
}

func (p *parser) architecture() {
	start := p.expect("architecture")
	if p.file.Architecture != nil {
		panic(newError(p.path, p.text, start.offset, "multiple architectures in one file are not supported"))
	}
	a := ast.NewArchitecture(p.file, start.offset, start.offset)
	p.file.Architecture = a
	a.Name = p.ident().text
	p.expect("of")
	a.EntityName = p.ident().text
	p.expect("is")
	p.declarations(a, false).into(&a.Body)
	p.expect("begin")
	p.concurrentStatements(a, &a.Body)
	p.endOf("architecture")
	p.finish(a)
}

func (p *parser) packageUnit() {
	start := p.expect("package")
	isBody := p.accept("body")
	name := p.ident()
	p.expect("is")
	if p.is("new") {
		// package instantiation
		p.skipPast(";")
		return
	}
	if (isBody && p.file.PackageBody != nil) || (!isBody && p.file.Package != nil) {
		panic(newError(p.path, p.text, start.offset, "multiple packages in one file are not supported"))
	}
	pkg := ast.NewPackage(p.file, start.offset, start.offset)
	pkg.Name = name.text
	if isBody {
		p.file.PackageBody = pkg
	} else {
		p.file.Package = pkg
	}
	if p.accept("generic") {
		p.skipPast(";")
	}
	d := p.declarations(pkg, false)
	pkg.Constants = d.constants
	pkg.Signals = d.signals
	pkg.Types = d.types
	pkg.Functions = d.functions
	pkg.Components = d.components
	if isBody {
		p.endOf("package", "body")
	} else {
		p.endOf("package")
	}
	p.finish(pkg)
}

// configuration skips a configuration declaration.
func (p *parser) configuration() {
	p.expect("configuration")
	p.ident()
	p.expect("of")
	p.ident()
	p.expect("is")
	depth := 0
	for {
		if p.peek().kind == tEOF {
			p.fail("unterminated configuration")
		}
		if p.is("end") {
			if p.peekAt(1).lower == "for" {
				p.next()
				p.next()
				depth--
				continue
			}
			if depth <= 0 {
				break
			}
		}
		if p.is("for") {
			depth++
		}
		p.next()
	}
	p.endOf("configuration")
}
