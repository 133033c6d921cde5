package ast

import "github.com/robert-at-pretension-io/vhdl-sema/internal/memo"

// Statement is a sequential statement. The set of variants is closed:
// *Assignment, *If, *Case and *Loop.
type Statement interface {
	Node
	stmt()
}

func (*Assignment) stmt() {}
func (*If) stmt()         {}
func (*Case) stmt()       {}
func (*Loop) stmt()       {}

// Read is an occurrence of an identifier being read. Element marks the
// suffix of a selected name, as in r.field.
type Read struct {
	nodeBase
	Text    string
	Element bool
}

func NewRead(parent Node, start, end int) *Read {
	r := &Read{}
	attach(r, parent, start, end)
	return r
}

// Write is an occurrence of an identifier being assigned.
type Write struct {
	nodeBase
	Text string
}

func NewWrite(parent Node, start, end int) *Write {
	w := &Write{}
	attach(w, parent, start, end)
	return w
}

// Assignment is a signal or variable assignment. Procedure calls, asserts,
// waits and other simple statements are kept as assignments without writes.
type Assignment struct {
	nodeBase
	Label    string
	Variable bool
	Writes   []*Write
	Reads    []*Read
}

func NewAssignment(parent Node, start, end int) *Assignment {
	a := &Assignment{}
	attach(a, parent, start, end)
	return a
}

// If is an if statement. Else is nil when there is no else branch.
type If struct {
	nodeBase
	Label   string
	Clauses []*IfClause
	Else    []Statement
}

func NewIf(parent Node, start, end int) *If {
	i := &If{}
	attach(i, parent, start, end)
	return i
}

// IfClause is the if or an elsif branch of an if statement.
type IfClause struct {
	nodeBase
	Condition     []*Read
	ConditionText string
	Body          []Statement
}

func NewIfClause(parent Node, start, end int) *IfClause {
	c := &IfClause{}
	attach(c, parent, start, end)
	return c
}

// Case is a case statement.
type Case struct {
	nodeBase
	Label    string
	Selector []*Read
	Arms     []*When
}

func NewCase(parent Node, start, end int) *Case {
	c := &Case{}
	attach(c, parent, start, end)
	return c
}

// When is one arm of a case statement.
type When struct {
	nodeBase
	Choices []*Read
	Body    []Statement
}

func NewWhen(parent Node, start, end int) *When {
	w := &When{}
	attach(w, parent, start, end)
	return w
}

// Loop is a for loop, or a while or plain loop when Variable is empty.
type Loop struct {
	nodeBase
	Label    string
	Variable string
	Bounds   []*Read
	Body     []Statement
}

func NewLoop(parent Node, start, end int) *Loop {
	l := &Loop{}
	attach(l, parent, start, end)
	return l
}

// Process is a process statement.
type Process struct {
	nodeBase
	Label       string
	Sensitivity []*Read
	Variables   []*Variable
	Constants   []*Constant
	Types       []*Type
	Functions   []*Function
	Statements  []Statement

	flatWrites memo.Cell[[]*Write]
	flatReads  memo.Cell[[]*Read]
	register   memo.Cell[bool]
	resets     memo.Cell[[]string]
}

func NewProcess(parent Node, start, end int) *Process {
	p := &Process{}
	attach(p, parent, start, end)
	return p
}
