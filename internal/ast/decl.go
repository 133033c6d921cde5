package ast

import "github.com/robert-at-pretension-io/vhdl-sema/internal/memo"

// Direction is the mode of a port.
type Direction string

const (
	In    Direction = "in"
	Out   Direction = "out"
	Inout Direction = "inout"
)

// Writable reports whether a port of this direction may be assigned.
func (d Direction) Writable() bool {
	return d == Out || d == Inout
}

// Interface is the externally visible side of a design unit that can be
// instantiated: an entity or a component declaration.
type Interface interface {
	Node
	InterfaceName() string
	InterfacePorts() []*Port
	InterfaceGenerics() []*Generic
}

// Entity is an entity declaration.
type Entity struct {
	nodeBase
	Name     string
	Generics []*Generic
	Ports    []*Port
}

func NewEntity(parent Node, start, end int) *Entity {
	e := &Entity{}
	attach(e, parent, start, end)
	return e
}

func (e *Entity) InterfaceName() string         { return e.Name }
func (e *Entity) InterfacePorts() []*Port       { return e.Ports }
func (e *Entity) InterfaceGenerics() []*Generic { return e.Generics }

// Component is a component declaration in an architecture or package.
type Component struct {
	nodeBase
	Name     string
	Generics []*Generic
	Ports    []*Port
}

func NewComponent(parent Node, start, end int) *Component {
	c := &Component{}
	attach(c, parent, start, end)
	return c
}

func (c *Component) InterfaceName() string         { return c.Name }
func (c *Component) InterfacePorts() []*Port       { return c.Ports }
func (c *Component) InterfaceGenerics() []*Generic { return c.Generics }

// Body holds the declarations and concurrent statements shared by
// architectures and generate blocks.
type Body struct {
	Signals        []*Signal
	Constants      []*Constant
	Types          []*Type
	Functions      []*Function
	Components     []*Component
	Processes      []*Process
	Instantiations []*Instantiation
	Generates      []*Generate
	Assignments    []*Assignment
}

// Architecture is an architecture body.
type Architecture struct {
	nodeBase
	Name       string
	EntityName string
	Body
}

func NewArchitecture(parent Node, start, end int) *Architecture {
	a := &Architecture{}
	attach(a, parent, start, end)
	return a
}

// AllProcesses returns the processes of the architecture and of every
// nested generate, depth first.
func (a *Architecture) AllProcesses() []*Process {
	var out []*Process
	var walk func(b *Body)
	walk = func(b *Body) {
		out = append(out, b.Processes...)
		for _, g := range b.Generates {
			walk(&g.Body)
		}
	}
	walk(&a.Body)
	return out
}

// GenerateKind distinguishes for-generate, if-generate and block statements.
type GenerateKind string

const (
	ForGenerate GenerateKind = "for"
	IfGenerate  GenerateKind = "if"
	Block       GenerateKind = "block"
)

// Generate is a generate statement or block statement with its own body.
type Generate struct {
	nodeBase
	Label     string
	Kind      GenerateKind
	Variable  string
	Bounds    []*Read
	Condition []*Read
	Body
}

func NewGenerate(parent Node, start, end int) *Generate {
	g := &Generate{}
	attach(g, parent, start, end)
	return g
}

// Package is a package declaration.
type Package struct {
	nodeBase
	Name       string
	Constants  []*Constant
	Signals    []*Signal
	Types      []*Type
	Functions  []*Function
	Components []*Component
}

func NewPackage(parent Node, start, end int) *Package {
	p := &Package{}
	attach(p, parent, start, end)
	return p
}

// SignalLike is the common part of signals, ports and variables.
type SignalLike struct {
	nodeBase
	Name    string
	Type    string
	Default []*Read

	register memo.Cell[*Process]
}

// Signal is a signal declaration.
type Signal struct {
	SignalLike
}

func NewSignal(parent Node, start, end int) *Signal {
	s := &Signal{}
	attach(s, parent, start, end)
	return s
}

// Port is an entity or component port.
type Port struct {
	SignalLike
	Direction Direction
}

func NewPort(parent Node, start, end int) *Port {
	p := &Port{}
	attach(p, parent, start, end)
	return p
}

// Variable is a variable declared in a process.
type Variable struct {
	SignalLike
}

func NewVariable(parent Node, start, end int) *Variable {
	v := &Variable{}
	attach(v, parent, start, end)
	return v
}

// Constant is a constant declaration.
type Constant struct {
	nodeBase
	Name  string
	Type  string
	Value []*Read
}

func NewConstant(parent Node, start, end int) *Constant {
	c := &Constant{}
	attach(c, parent, start, end)
	return c
}

// Generic is an entity or component generic.
type Generic struct {
	nodeBase
	Name    string
	Type    string
	Default []*Read
}

func NewGeneric(parent Node, start, end int) *Generic {
	g := &Generic{}
	attach(g, parent, start, end)
	return g
}

// TypeKind classifies type declarations.
type TypeKind string

const (
	EnumType     TypeKind = "enum"
	RecordType   TypeKind = "record"
	PhysicalType TypeKind = "physical"
	OtherType    TypeKind = "other"
)

// Type is a type or subtype declaration. Enumeration literals and physical
// units are both kept as States.
type Type struct {
	nodeBase
	Name   string
	Kind   TypeKind
	States []*State
	Fields []*RecordField
}

func NewType(parent Node, start, end int) *Type {
	t := &Type{}
	attach(t, parent, start, end)
	return t
}

// State is an enumeration literal or physical unit.
type State struct {
	nodeBase
	Name string
}

func NewState(parent Node, start, end int) *State {
	s := &State{}
	attach(s, parent, start, end)
	return s
}

// RecordField is an element of a record type.
type RecordField struct {
	nodeBase
	Name string
	Type string
}

func NewRecordField(parent Node, start, end int) *RecordField {
	f := &RecordField{}
	attach(f, parent, start, end)
	return f
}

// Function is a function or procedure declaration. Subprogram bodies are
// not modelled.
type Function struct {
	nodeBase
	Name       string
	Procedure  bool
	ReturnType string
}

func NewFunction(parent Node, start, end int) *Function {
	f := &Function{}
	attach(f, parent, start, end)
	return f
}
