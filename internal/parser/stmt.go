package parser

import "github.com/robert-at-pretension-io/vhdl-sema/internal/ast"

func (p *parser) concurrentStatements(parent ast.Node, body *ast.Body) {
	for !p.is("end", "elsif", "else", "when") {
		if p.peek().kind == tEOF {
			p.fail("unexpected end of file in statement part")
		}
		p.concurrentStatement(parent, body)
	}
}

func (p *parser) concurrentStatement(parent ast.Node, body *ast.Body) {
	start := p.peek()
	label := p.labelled()
	postponed := p.is("postponed")
	switch {
	case p.is("process") || (postponed && p.peekAt(1).lower == "process"):
		body.Processes = append(body.Processes, p.process(parent, start, label))
	case p.is("entity", "component", "configuration"):
		body.Instantiations = append(body.Instantiations, p.instantiation(parent, start, label))
	case label != "" && p.isIdent() && (p.peekAt(1).lower == "generic" || p.peekAt(1).lower == "port" || p.peekAt(1).text == ";"):
		body.Instantiations = append(body.Instantiations, p.instantiation(parent, start, label))
	case p.is("for"):
		body.Generates = append(body.Generates, p.forGenerate(parent, start, label))
	case p.is("if"):
		body.Generates = append(body.Generates, p.ifGenerate(parent, start, label)...)
	case p.is("case"):
		p.skipCaseGenerate()
	case p.is("block"):
		body.Generates = append(body.Generates, p.block(parent, start, label))
	case p.is("with") || (postponed && p.peekAt(1).lower == "with"):
		p.accept("postponed")
		body.Assignments = append(body.Assignments, p.selectedAssignment(parent, start, label))
	default:
		p.accept("postponed")
		body.Assignments = append(body.Assignments, p.simpleStatement(parent, start, label))
	}
}

func (p *parser) process(parent ast.Node, start token, label string) *ast.Process {
	proc := ast.NewProcess(parent, start.offset, start.offset)
	proc.Label = label
	p.accept("postponed")
	p.expect("process")
	if p.accept("(") {
		lo, hi := p.scanExpr(func(token) bool { return false })
		proc.Sensitivity = p.reads(proc, lo, hi)
		p.expect(")")
	}
	p.accept("is")
	d := p.declarations(proc, true)
	proc.Variables = d.variables
	proc.Constants = d.constants
	proc.Types = d.types
	proc.Functions = d.functions
	p.expect("begin")
	proc.Statements = p.statements(proc)
	p.endOf("postponed", "process")
	p.finish(proc)
	return proc
}

func (p *parser) instantiation(parent ast.Node, start token, label string) *ast.Instantiation {
	inst := ast.NewInstantiation(parent, start.offset, start.offset)
	inst.Label = label
	inst.Kind = ast.ComponentInstance
	switch {
	case p.accept("entity"):
		inst.Kind = ast.EntityInstance
		parts := p.selectedName()
		inst.ComponentName = parts[len(parts)-1]
		if len(parts) > 1 {
			inst.Library = parts[0]
		}
		if p.accept("(") {
			p.ident()
			p.expect(")")
		}
	case p.accept("configuration"):
		parts := p.selectedName()
		inst.ComponentName = parts[len(parts)-1]
	default:
		p.accept("component")
		inst.ComponentName = p.ident().text
	}
	if p.accept("generic") {
		p.expect("map")
		inst.GenericMap = p.associationMap(inst)
	}
	if p.accept("port") {
		p.expect("map")
		inst.PortMap = p.associationMap(inst)
	}
	p.expect(";")
	p.finish(inst)
	return inst
}

func (p *parser) associationMap(parent ast.Node) *ast.Map {
	open := p.expect("(")
	m := ast.NewMap(parent, open.offset, open.offset)
	for {
		m.Mappings = append(m.Mappings, p.association(m))
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	p.finish(m)
	return m
}

// association parses `[formal =>] actual`. The actual is recorded both as an
// input and split into the name driven and the index reads for an output.
func (p *parser) association(m *ast.Map) *ast.Mapping {
	start := p.peek()
	mapping := ast.NewMapping(m, start.offset, start.offset)

	save := p.pos
	p.scanExpr(func(t token) bool { return t.text == "=>" || t.text == "," })
	if p.is("=>") {
		flo, fhi := save, p.pos
		p.next()
		_, mapping.Formal = p.occurrences(mapping, flo, fhi, -1)
	} else {
		p.pos = save
	}

	if p.accept("open") {
		p.finish(mapping)
		return mapping
	}
	lo, hi := p.scanExpr(func(t token) bool { return t.text == "," })
	mapping.IfInput = p.reads(mapping, lo, hi)
	if p.isName(lo, hi) {
		mapping.IfOutputWrites, mapping.IfOutputReads = p.occurrences(mapping, lo, hi, 0)
	} else {
		mapping.IfOutputReads = p.reads(mapping, lo, hi)
	}
	p.finish(mapping)
	return mapping
}

func (p *parser) generateBody(g *ast.Generate) {
	if p.is("signal", "constant", "type", "subtype", "shared", "variable", "file",
		"alias", "component", "function", "procedure", "pure", "impure", "attribute", "use") {
		p.declarations(g, false).into(&g.Body)
		p.expect("begin")
	} else {
		p.accept("begin")
	}
	p.concurrentStatements(g, &g.Body)
	// an alternative body may close with `end [label];` before `end generate`
	if p.is("end") && p.peekAt(1).lower != "generate" {
		p.endOf()
	}
}

func (p *parser) forGenerate(parent ast.Node, start token, label string) *ast.Generate {
	g := ast.NewGenerate(parent, start.offset, start.offset)
	g.Label = label
	g.Kind = ast.ForGenerate
	p.expect("for")
	g.Variable = p.ident().text
	p.expect("in")
	g.Bounds = p.expression(g, "generate")
	p.expect("generate")
	p.generateBody(g)
	p.endOf("generate")
	p.finish(g)
	return g
}

// ifGenerate returns one generate per branch. An else branch has no condition.
func (p *parser) ifGenerate(parent ast.Node, start token, label string) []*ast.Generate {
	var out []*ast.Generate
	branch := func(from token, conditional bool) {
		g := ast.NewGenerate(parent, from.offset, from.offset)
		g.Label = label
		g.Kind = ast.IfGenerate
		p.labelled()
		if conditional {
			g.Condition = p.expression(g, "generate")
		}
		p.expect("generate")
		p.generateBody(g)
		p.finish(g)
		out = append(out, g)
	}
	p.expect("if")
	branch(start, true)
	for p.is("elsif") {
		branch(p.next(), true)
	}
	if p.is("else") {
		branch(p.next(), false)
	}
	p.endOf("generate")
	return out
}

// skipCaseGenerate skips a case generate statement.
func (p *parser) skipCaseGenerate() {
	depth := 0
	for {
		t := p.next()
		switch {
		case t.kind == tEOF:
			p.fail("unterminated case generate")
		case t.lower == "end" && p.is("generate"):
			p.next()
			if depth--; depth == 0 {
				if p.isIdent() {
					p.next()
				}
				p.expect(";")
				return
			}
		case t.lower == "generate":
			depth++
		}
	}
}

func (p *parser) block(parent ast.Node, start token, label string) *ast.Generate {
	g := ast.NewGenerate(parent, start.offset, start.offset)
	g.Label = label
	g.Kind = ast.Block
	p.expect("block")
	if p.accept("(") {
		lo, hi := p.scanExpr(func(token) bool { return false })
		g.Condition = p.reads(g, lo, hi)
		p.expect(")")
	}
	p.accept("is")
	for p.is("generic", "port") {
		p.skipPast(";")
	}
	p.declarations(g, false).into(&g.Body)
	p.expect("begin")
	p.concurrentStatements(g, &g.Body)
	p.endOf("block")
	p.finish(g)
	return g
}

// statements parses sequential statements up to a token that closes the
// enclosing construct.
func (p *parser) statements(parent ast.Node) []ast.Statement {
	var out []ast.Statement
	for !p.is("end", "elsif", "else", "when") {
		if p.peek().kind == tEOF {
			p.fail("unexpected end of file in sequential statements")
		}
		if s := p.statement(parent); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *parser) statement(parent ast.Node) ast.Statement {
	start := p.peek()
	label := p.labelled()
	switch {
	case p.is("if"):
		return p.ifStatement(parent, start, label)
	case p.is("case"):
		return p.caseStatement(parent, start, label)
	case p.is("for", "while", "loop"):
		return p.loop(parent, start, label)
	case p.accept("null"):
		p.expect(";")
		return nil
	case p.is("exit", "next"):
		return p.exitStatement(parent, start, label)
	case p.is("with"):
		return p.selectedAssignment(parent, start, label)
	default:
		return p.simpleStatement(parent, start, label)
	}
}

func (p *parser) ifStatement(parent ast.Node, start token, label string) *ast.If {
	s := ast.NewIf(parent, start.offset, start.offset)
	s.Label = label
	kw := p.expect("if")
	for {
		c := ast.NewIfClause(s, kw.offset, kw.offset)
		lo, hi := p.scanExpr(func(t token) bool { return t.lower == "then" })
		c.Condition = p.reads(c, lo, hi)
		c.ConditionText = p.textOf(lo, hi)
		p.expect("then")
		c.Body = p.statements(c)
		// a clause runs up to the next branch keyword
		c.Range().End.SetOffset(p.peek().offset)
		c.Range().TrimTrailingWhitespace()
		s.Clauses = append(s.Clauses, c)
		if !p.is("elsif") {
			break
		}
		kw = p.next()
	}
	if p.accept("else") {
		s.Else = p.statements(s)
		if s.Else == nil {
			s.Else = []ast.Statement{}
		}
	}
	p.endOf("if")
	p.finish(s)
	return s
}

func (p *parser) caseStatement(parent ast.Node, start token, label string) *ast.Case {
	s := ast.NewCase(parent, start.offset, start.offset)
	s.Label = label
	p.expect("case")
	p.accept("?")
	s.Selector = p.expression(s, "is")
	p.expect("is")
	for p.is("when") {
		kw := p.next()
		arm := ast.NewWhen(s, kw.offset, kw.offset)
		arm.Choices = p.expression(arm, "=>")
		p.expect("=>")
		arm.Body = p.statements(arm)
		p.finish(arm)
		s.Arms = append(s.Arms, arm)
	}
	p.expect("end")
	p.expect("case")
	p.accept("?")
	if p.isIdent() {
		p.next()
	}
	p.expect(";")
	p.finish(s)
	return s
}

func (p *parser) loop(parent ast.Node, start token, label string) *ast.Loop {
	l := ast.NewLoop(parent, start.offset, start.offset)
	l.Label = label
	switch {
	case p.accept("for"):
		l.Variable = p.ident().text
		p.expect("in")
		l.Bounds = p.expression(l, "loop")
	case p.accept("while"):
		l.Bounds = p.expression(l, "loop")
	}
	p.expect("loop")
	l.Body = p.statements(l)
	p.endOf("loop")
	p.finish(l)
	return l
}

// exitStatement keeps the condition of exit and next as reads.
func (p *parser) exitStatement(parent ast.Node, start token, label string) *ast.Assignment {
	a := ast.NewAssignment(parent, start.offset, start.offset)
	a.Label = label
	p.next()
	if p.isIdent() && (p.peekAt(1).lower == "when" || p.peekAt(1).text == ";") {
		// loop label
		p.next()
	}
	if p.accept("when") {
		a.Reads = p.expression(a, ";")
	}
	p.expect(";")
	p.finish(a)
	return a
}

// simpleStatement parses signal and variable assignments, procedure calls,
// wait, assert, report and return statements.
func (p *parser) simpleStatement(parent ast.Node, start token, label string) *ast.Assignment {
	a := ast.NewAssignment(parent, start.offset, start.offset)
	a.Label = label
	if p.accept("wait", "assert", "report", "return") {
		a.Reads = p.expression(a, ";")
		p.expect(";")
		p.finish(a)
		return a
	}
	lo, hi := p.scanExpr(func(t token) bool { return t.text == "<=" || t.text == ":=" || t.text == ";" })
	if p.is("<=", ":=") {
		a.Variable = p.next().text == ":="
		base := 0
		if p.toks[lo].text == "(" {
			base = 1
		}
		a.Writes, a.Reads = p.occurrences(a, lo, hi, base)
		a.Reads = append(a.Reads, p.expression(a, ";")...)
	} else {
		a.Reads = p.reads(a, lo, hi)
	}
	p.expect(";")
	p.finish(a)
	return a
}

// selectedAssignment parses `with selector select target <= waveforms;`.
func (p *parser) selectedAssignment(parent ast.Node, start token, label string) *ast.Assignment {
	a := ast.NewAssignment(parent, start.offset, start.offset)
	a.Label = label
	p.expect("with")
	a.Reads = p.expression(a, "select")
	p.expect("select")
	p.accept("?")
	lo, hi := p.scanExpr(func(t token) bool { return t.text == "<=" || t.text == ":=" })
	a.Variable = p.is(":=")
	if !p.accept("<=", ":=") {
		p.fail("expected \"<=\", found %s", describe(p.peek()))
	}
	writes, reads := p.occurrences(a, lo, hi, 0)
	a.Writes = writes
	a.Reads = append(a.Reads, reads...)
	a.Reads = append(a.Reads, p.expression(a, ";")...)
	p.expect(";")
	p.finish(a)
	return a
}
