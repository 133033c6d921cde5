package ast

import "fmt"

// FlattenWrites collects the write occurrences of stmts, descending into
// every branch and loop body.
func FlattenWrites(stmts []Statement) []*Write {
	var out []*Write
	for _, s := range stmts {
		switch s := s.(type) {
		case *Assignment:
			out = append(out, s.Writes...)
		case *If:
			for _, c := range s.Clauses {
				out = append(out, FlattenWrites(c.Body)...)
			}
			if s.Else != nil {
				out = append(out, FlattenWrites(s.Else)...)
			}
		case *Case:
			for _, w := range s.Arms {
				out = append(out, FlattenWrites(w.Body)...)
			}
		case *Loop:
			out = append(out, FlattenWrites(s.Body)...)
		default:
			panic(unknownStatement(s))
		}
	}
	return out
}

// FlattenReads collects the read occurrences of stmts. Besides assignment
// reads it includes if conditions, case selectors and when choices.
func FlattenReads(stmts []Statement) []*Read {
	var out []*Read
	for _, s := range stmts {
		switch s := s.(type) {
		case *Assignment:
			out = append(out, s.Reads...)
		case *If:
			for _, c := range s.Clauses {
				out = append(out, c.Condition...)
				out = append(out, FlattenReads(c.Body)...)
			}
			if s.Else != nil {
				out = append(out, FlattenReads(s.Else)...)
			}
		case *Case:
			out = append(out, s.Selector...)
			for _, w := range s.Arms {
				out = append(out, w.Choices...)
				out = append(out, FlattenReads(w.Body)...)
			}
		case *Loop:
			out = append(out, FlattenReads(s.Body)...)
		default:
			panic(unknownStatement(s))
		}
	}
	return out
}

func unknownStatement(s Statement) *InvariantError {
	id := NoNode
	if s != nil {
		id = s.ID()
	}
	return &InvariantError{Node: id, Msg: fmt.Sprintf("unknown statement variant %T", s)}
}

// FlatWrites returns FlattenWrites of the process body, computed once.
func (p *Process) FlatWrites() []*Write {
	return p.flatWrites.Get(func() []*Write { return FlattenWrites(p.Statements) })
}

// FlatReads returns FlattenReads of the process body, computed once.
func (p *Process) FlatReads() []*Read {
	return p.flatReads.Get(func() []*Read { return FlattenReads(p.Statements) })
}
