package ast

import (
	"fmt"
	"regexp"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

// InferenceRules are the condition patterns used for register and reset inference.
type InferenceRules struct {
	ClockEdge *regexp.Regexp
	Reset     *regexp.Regexp
}

// DefaultRules matches edge tests written with rising_edge, falling_edge or
// 'event, and reset clauses mentioning "res".
var DefaultRules = InferenceRules{
	ClockEdge: regexp.MustCompile(`(?i)rising_edge|falling_edge|'event`),
	Reset:     regexp.MustCompile(`(?i)res`),
}

// File is the root of a tree: the text of one design file and the design
// units declared in it.
type File struct {
	nodeBase
	Path      string
	Library   string
	Libraries []string
	Uses      []*UseClause

	Entity       *Entity
	Architecture *Architecture
	Package      *Package
	PackageBody  *Package

	text     string
	nodes    []Node
	packages []*Package
	linked   *Entity
	rules    InferenceRules
}

// NewFile creates an empty tree over text. The file belongs to library work
// until the caller says otherwise.
func NewFile(path, text string) *File {
	f := &File{Path: path, Library: "work", text: text, rules: DefaultRules}
	f.id = 0
	f.parent = NoNode
	f.file = f
	f.rng = source.NewRange(f, 0, len(text))
	f.nodes = []Node{f}
	return f
}

// Text returns the raw source text.
func (f *File) Text() string { return f.text }

// Node resolves a handle issued by this file's arena.
func (f *File) Node(id NodeID) Node {
	if id < 0 || int(id) >= len(f.nodes) {
		panic(&InvariantError{Node: id, Msg: fmt.Sprintf("handle outside arena of %d nodes", len(f.nodes))})
	}
	return f.nodes[id]
}

// Nodes returns every node in construction order, starting with the file.
func (f *File) Nodes() []Node { return f.nodes }

// Packages returns the packages made visible by the file's use clauses, in
// clause order.
func (f *File) Packages() []*Package { return f.packages }

// SetPackages records the resolved use clauses.
func (f *File) SetPackages(pkgs []*Package) { f.packages = pkgs }

// BoundEntity returns the entity implemented by the file's architecture:
// the file's own entity, or the one linked from another file.
func (f *File) BoundEntity() *Entity {
	if f.Entity != nil {
		return f.Entity
	}
	return f.linked
}

// LinkEntity records the entity declared in another file for an
// architecture-only file. It has no effect when the file declares its own.
func (f *File) LinkEntity(e *Entity) { f.linked = e }

// Rules returns the inference patterns in effect for this tree.
func (f *File) Rules() InferenceRules { return f.rules }

// SetRules replaces the inference patterns. Nil patterns keep their defaults.
// It must be called before any register or reset fact is computed.
func (f *File) SetRules(r InferenceRules) {
	if r.ClockEdge == nil {
		r.ClockEdge = DefaultRules.ClockEdge
	}
	if r.Reset == nil {
		r.Reset = DefaultRules.Reset
	}
	f.rules = r
}

// UseClause is one selected name of a use clause, e.g. ieee.numeric_std.all.
type UseClause struct {
	nodeBase
	Library string
	Package string
	Item    string
}

func NewUseClause(parent Node, start, end int) *UseClause {
	u := &UseClause{}
	attach(u, parent, start, end)
	return u
}

// Qualified returns library.package.
func (u *UseClause) Qualified() string {
	return u.Library + "." + u.Package
}
