package parser

import "github.com/robert-at-pretension-io/vhdl-sema/internal/ast"

// decls collects the items of a declarative part.
type decls struct {
	signals    []*ast.Signal
	variables  []*ast.Variable
	constants  []*ast.Constant
	types      []*ast.Type
	functions  []*ast.Function
	components []*ast.Component
}

func (d decls) into(b *ast.Body) {
	b.Signals = append(b.Signals, d.signals...)
	b.Constants = append(b.Constants, d.constants...)
	b.Types = append(b.Types, d.types...)
	b.Functions = append(b.Functions, d.functions...)
	b.Components = append(b.Components, d.components...)
}

// declarations parses declarative items until a token that cannot start
// one. Inside a process, variables and aliases become *ast.Variable; shared
// variables and aliases elsewhere are kept as signals.
func (p *parser) declarations(parent ast.Node, inProcess bool) decls {
	var d decls
	for {
		switch {
		case p.accept("signal"):
			d.signals = append(d.signals, objects(p, parent, ast.NewSignal, setSignal)...)
		case p.accept("constant", "file"):
			d.constants = append(d.constants, objects(p, parent, ast.NewConstant, setConstant)...)
		case p.is("variable", "shared"):
			p.accept("shared")
			p.expect("variable")
			if inProcess {
				d.variables = append(d.variables, objects(p, parent, ast.NewVariable, setVariable)...)
			} else {
				d.signals = append(d.signals, objects(p, parent, ast.NewSignal, setSignal)...)
			}
		case p.is("alias"):
			name := p.alias()
			if inProcess {
				v := ast.NewVariable(parent, name.offset, name.end())
				v.Name, v.Type = name.text, "alias"
				d.variables = append(d.variables, v)
			} else {
				s := ast.NewSignal(parent, name.offset, name.end())
				s.Name, s.Type = name.text, "alias"
				d.signals = append(d.signals, s)
			}
		case p.is("type"):
			d.types = append(d.types, p.typeDecl(parent))
		case p.is("subtype"):
			d.types = append(d.types, p.subtypeDecl(parent))
		case p.is("function", "procedure", "pure", "impure"):
			d.functions = append(d.functions, p.subprogram(parent))
		case p.is("component"):
			d.components = append(d.components, p.component(parent))
		case p.is("use"):
			p.useClause(parent)
		case p.is("attribute", "for", "disconnect", "group"):
			p.skipPast(";")
		default:
			return d
		}
	}
}

func setSignal(s *ast.Signal, name, typ string, value []*ast.Read) {
	s.Name, s.Type, s.Default = name, typ, value
}

func setVariable(v *ast.Variable, name, typ string, value []*ast.Read) {
	v.Name, v.Type, v.Default = name, typ, value
}

func setConstant(c *ast.Constant, name, typ string, value []*ast.Read) {
	c.Name, c.Type, c.Value = name, typ, value
}

// objects parses `id {, id} : subtype [:= expression] ;` after an object
// keyword, creating one node per name. The nodes share the initial value.
func objects[T ast.Node](p *parser, parent ast.Node, newNode func(ast.Node, int, int) T, set func(T, string, string, []*ast.Read)) []T {
	names := p.identList()
	nodes := make([]T, len(names))
	for i, n := range names {
		nodes[i] = newNode(parent, n.offset, n.end())
	}
	p.expect(":")
	typ := p.subtype()
	var value []*ast.Read
	if p.accept(":=") {
		value = p.expression(nodes[0], ";")
	}
	p.expect(";")
	for i, n := range nodes {
		set(n, names[i].text, typ, value)
		p.finish(n)
	}
	return nodes
}

// interfaceElement parses `id {, id} : [mode] subtype [:= expression]`
// inside a generic or port clause.
func interfaceElement[T ast.Node](p *parser, parent ast.Node, newNode func(ast.Node, int, int) T) ([]T, []token, ast.Direction, string, []*ast.Read) {
	names := p.identList()
	nodes := make([]T, len(names))
	for i, n := range names {
		nodes[i] = newNode(parent, n.offset, n.end())
	}
	p.expect(":")
	dir := ast.In
	switch {
	case p.accept("in"):
	case p.accept("out", "buffer"):
		dir = ast.Out
	case p.accept("inout", "linkage"):
		dir = ast.Inout
	}
	typ := p.subtype()
	var value []*ast.Read
	if p.accept(":=") {
		value = p.expression(nodes[0], ";")
	}
	for _, n := range nodes {
		p.finish(n)
	}
	return nodes, names, dir, typ, value
}

// interfaceList parses ( element {; element} ).
func (p *parser) interfaceList(element func()) {
	p.expect("(")
	for {
		element()
		if !p.accept(";") || p.is(")") {
			break
		}
	}
	p.expect(")")
}

func (p *parser) generics(parent ast.Node) []*ast.Generic {
	var out []*ast.Generic
	p.interfaceList(func() {
		if p.is("type", "function", "procedure", "pure", "impure", "package") {
			// generic types and subprograms
			p.scanExpr(func(t token) bool { return t.text == ";" })
			return
		}
		p.accept("constant")
		nodes, names, _, typ, value := interfaceElement(p, parent, ast.NewGeneric)
		for i, g := range nodes {
			g.Name, g.Type, g.Default = names[i].text, typ, value
		}
		out = append(out, nodes...)
	})
	return out
}

func (p *parser) ports(parent ast.Node) []*ast.Port {
	var out []*ast.Port
	p.interfaceList(func() {
		p.accept("signal")
		nodes, names, dir, typ, value := interfaceElement(p, parent, ast.NewPort)
		for i, port := range nodes {
			port.Name, port.Type, port.Default, port.Direction = names[i].text, typ, value, dir
		}
		out = append(out, nodes...)
	})
	return out
}

// subtype consumes a subtype indication and returns its text.
func (p *parser) subtype() string {
	lo, hi := p.scanExpr(func(t token) bool { return t.text == ";" || t.text == ":=" })
	if lo == hi {
		p.fail("expected a subtype indication, found %s", describe(p.peek()))
	}
	return p.textOf(lo, hi)
}

// alias consumes an alias declaration and returns its designator.
func (p *parser) alias() token {
	p.expect("alias")
	name := p.next()
	p.skipPast(";")
	return name
}

func (p *parser) typeDecl(parent ast.Node) *ast.Type {
	p.expect("type")
	name := p.ident()
	t := ast.NewType(parent, name.offset, name.end())
	t.Name = name.text
	t.Kind = ast.OtherType
	if p.accept(";") {
		// incomplete type declaration
		return t
	}
	p.expect("is")
	switch {
	case p.accept("("):
		t.Kind = ast.EnumType
		for {
			lit := p.next()
			if lit.kind != tIdent && lit.kind != tChar {
				p.fail("expected enumeration literal, found %s", describe(lit))
			}
			s := ast.NewState(t, lit.offset, lit.end())
			s.Name = lit.text
			t.States = append(t.States, s)
			if !p.accept(",") {
				break
			}
		}
		p.expect(")")
	case p.accept("record"):
		t.Kind = ast.RecordType
		for !p.is("end") {
			names := p.identList()
			fields := make([]*ast.RecordField, len(names))
			for i, n := range names {
				fields[i] = ast.NewRecordField(t, n.offset, n.end())
				fields[i].Name = n.text
			}
			p.expect(":")
			typ := p.subtype()
			p.expect(";")
			for _, f := range fields {
				f.Type = typ
				p.finish(f)
			}
			t.Fields = append(t.Fields, fields...)
		}
		p.expect("end")
		p.expect("record")
		if p.isIdent() {
			p.next()
		}
	case p.is("range"):
		p.scanExpr(func(tok token) bool { return tok.text == ";" || tok.lower == "units" })
		if p.accept("units") {
			t.Kind = ast.PhysicalType
			for !p.is("end") {
				unit := p.ident()
				s := ast.NewState(t, unit.offset, unit.end())
				s.Name = unit.text
				t.States = append(t.States, s)
				p.skipPast(";")
			}
			p.expect("end")
			p.expect("units")
			if p.isIdent() {
				p.next()
			}
		}
	case p.accept("protected"):
		p.accept("body")
		for !(p.is("end") && p.peekAt(1).lower == "protected") {
			switch {
			case p.peek().kind == tEOF:
				p.fail("unterminated protected type %s", t.Name)
			case p.is("function", "procedure", "pure", "impure"):
				p.skipSubprogram()
			default:
				p.next()
			}
		}
		p.expect("end")
		p.expect("protected")
		p.accept("body")
		if p.isIdent() {
			p.next()
		}
	default:
		// array, access and file types
		p.scanExpr(func(tok token) bool { return tok.text == ";" })
	}
	p.expect(";")
	p.finish(t)
	return t
}

func (p *parser) subtypeDecl(parent ast.Node) *ast.Type {
	p.expect("subtype")
	name := p.ident()
	t := ast.NewType(parent, name.offset, name.end())
	t.Name = name.text
	t.Kind = ast.OtherType
	p.skipPast(";")
	p.finish(t)
	return t
}

// subprogram parses a subprogram declaration and skips its body, if any.
func (p *parser) subprogram(parent ast.Node) *ast.Function {
	start := p.peek()
	p.accept("pure", "impure")
	f := ast.NewFunction(parent, start.offset, start.offset)
	f.Procedure = p.is("procedure")
	p.next()
	name := p.next()
	if name.kind != tIdent && name.kind != tString {
		p.fail("expected subprogram name, found %s", describe(name))
	}
	f.Name = name.text
	if p.is("is") && p.peekAt(1).lower == "new" {
		p.skipPast(";")
		p.finish(f)
		return f
	}
	p.scanExpr(func(t token) bool { return t.text == ";" || t.lower == "is" || t.lower == "return" })
	if p.accept("return") {
		lo, hi := p.scanExpr(func(t token) bool { return t.text == ";" || t.lower == "is" })
		f.ReturnType = p.textOf(lo, hi)
	}
	if !p.accept(";") {
		p.expect("is")
		p.skipSubprogramBody()
	}
	p.finish(f)
	return f
}

// skipSubprogram skips a nested subprogram declaration or body without
// creating nodes.
func (p *parser) skipSubprogram() {
	p.accept("pure", "impure")
	p.next()
	p.next()
	p.scanExpr(func(t token) bool { return t.text == ";" || t.lower == "is" })
	if p.accept(";") {
		return
	}
	p.expect("is")
	if p.is("new") {
		p.skipPast(";")
		return
	}
	p.skipSubprogramBody()
}

// skipSubprogramBody skips from after `is` to the end of the body. Nested
// subprograms in the declarative part are skipped recursively; in the
// statement part only `end if`, `end case` and `end loop` can precede the
// closing `end`.
func (p *parser) skipSubprogramBody() {
	for !p.is("begin") {
		switch {
		case p.peek().kind == tEOF:
			p.fail("unterminated subprogram body")
		case p.is("function", "procedure", "pure", "impure"):
			p.skipSubprogram()
		default:
			p.next()
		}
	}
	p.next()
	for {
		t := p.next()
		switch {
		case t.kind == tEOF:
			p.fail("unterminated subprogram body")
		case t.lower == "end":
			if p.is("if", "case", "loop") {
				p.next()
				continue
			}
			p.skipPast(";")
			return
		}
	}
}

func (p *parser) component(parent ast.Node) *ast.Component {
	start := p.expect("component")
	c := ast.NewComponent(parent, start.offset, start.offset)
	c.Name = p.ident().text
	p.accept("is")
	if p.accept("generic") {
		c.Generics = p.generics(c)
		p.expect(";")
	}
	if p.accept("port") {
		c.Ports = p.ports(c)
		p.expect(";")
	}
	p.endOf("component")
	p.finish(c)
	return c
}
