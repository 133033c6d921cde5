package parser

import "github.com/robert-at-pretension-io/vhdl-sema/internal/ast"

// scanExpr consumes tokens until stop matches a token outside brackets, an
// unmatched closing bracket, or end of file, and returns the consumed token
// index range.
func (p *parser) scanExpr(stop func(token) bool) (lo, hi int) {
	lo = p.pos
	depth := 0
	for {
		t := p.peek()
		if t.kind == tEOF {
			break
		}
		if depth == 0 && stop(t) {
			break
		}
		if t.kind == tDelim {
			switch t.text {
			case "(", "[":
				depth++
			case ")", "]":
				if depth == 0 {
					return lo, p.pos
				}
				depth--
			}
		}
		p.next()
	}
	return lo, p.pos
}

func (p *parser) textOf(lo, hi int) string {
	if lo >= hi {
		return ""
	}
	return p.text[p.toks[lo].offset:p.toks[hi-1].end()]
}

// expression consumes an expression ending before one of the stop words and
// returns its reads.
func (p *parser) expression(parent ast.Node, stops ...string) []*ast.Read {
	lo, hi := p.scanExpr(func(t token) bool {
		for _, s := range stops {
			if t.lower == s {
				return true
			}
		}
		return false
	})
	return p.reads(parent, lo, hi)
}

// reads creates a read for every identifier in toks[lo:hi].
func (p *parser) reads(parent ast.Node, lo, hi int) []*ast.Read {
	_, reads := p.occurrences(parent, lo, hi, -1)
	return reads
}

// occurrences classifies the identifiers of toks[lo:hi]. Names at bracket
// depth writeDepth are writes, except record selections of a written name;
// every other identifier is a read. A writeDepth of -1 yields only reads.
//
// Skipped: reserved words, attribute names after a tick, formals and choices
// before => inside brackets, and library prefixes of selected names. A name
// selected with a dot is an element read.
func (p *parser) occurrences(parent ast.Node, lo, hi, writeDepth int) ([]*ast.Write, []*ast.Read) {
	var (
		writes       []*ast.Write
		reads        []*ast.Read
		depth        int
		afterLibrary bool
	)
	for i := lo; i < hi; i++ {
		t := p.toks[i]
		if t.kind == tDelim {
			switch t.text {
			case "(", "[":
				depth++
			case ")", "]":
				depth--
			}
			continue
		}
		if t.kind != tIdent || keywords[t.lower] {
			continue
		}
		prev := token{}
		if i > lo {
			prev = p.toks[i-1]
		}
		next := p.toks[i+1]
		if prev.kind == tTick {
			continue
		}
		if depth > 0 && next.text == "=>" {
			continue
		}
		if next.text == "." && p.libraries[t.lower] {
			afterLibrary = true
			continue
		}
		selected := prev.text == "." && !afterLibrary
		afterLibrary = false

		if depth == writeDepth {
			if selected {
				continue
			}
			w := ast.NewWrite(parent, t.offset, t.end())
			w.Text = t.text
			writes = append(writes, w)
			continue
		}
		r := ast.NewRead(parent, t.offset, t.end())
		r.Text = t.text
		r.Element = selected
		reads = append(reads, r)
	}
	return writes, reads
}

// isName reports whether toks[lo:hi] is a plain name: an identifier
// followed only by index, slice or selection suffixes.
func (p *parser) isName(lo, hi int) bool {
	if lo >= hi {
		return false
	}
	if t := p.toks[lo]; t.kind != tIdent || keywords[t.lower] {
		return false
	}
	depth := 0
	for i := lo + 1; i < hi; i++ {
		t := p.toks[i]
		switch {
		case t.text == "(":
			depth++
		case t.text == ")":
			depth--
		case depth > 0:
		case t.text == ".":
		case t.kind == tIdent && p.toks[i-1].text == ".":
		default:
			return false
		}
	}
	return true
}
