// Package ast is the typed syntax tree of a VHDL design file.
//
// Every node is registered in the arena owned by its File and refers to its
// parent by NodeID. Parent chains always end at the File; a chain longer than
// MaxDepth is reported as an *InvariantError panic. Derived facts (flattened
// reads and writes, register inference, resets) are computed on first use and
// cached for the life of the tree.
package ast

import (
	"fmt"
	"iter"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/memo"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

// MaxDepth bounds every walk up a parent chain.
const MaxDepth = 100

// NodeID is the arena index of a node within its File.
type NodeID int32

// NoNode is the parent of the File.
const NoNode NodeID = -1

// Node is implemented by every tree node.
type Node interface {
	ID() NodeID
	Parent() Node
	Range() source.Range
	Root() *File
	base() *nodeBase
}

type nodeBase struct {
	id     NodeID
	parent NodeID
	file   *File
	rng    source.Range
	root   memo.Cell[*File]
}

func (b *nodeBase) base() *nodeBase { return b }

// ID returns the node's arena handle.
func (b *nodeBase) ID() NodeID { return b.id }

// Range returns the node's source range.
func (b *nodeBase) Range() source.Range { return b.rng }

// Parent returns the owning node, or nil for the File.
func (b *nodeBase) Parent() Node {
	if b.parent == NoNode {
		return nil
	}
	return b.file.Node(b.parent)
}

// Root walks the parent handles up to the File. The result is cached.
func (b *nodeBase) Root() *File {
	return b.root.Get(func() *File {
		id := b.id
		for steps := 0; ; steps++ {
			if steps > MaxDepth {
				panic(&InvariantError{Node: b.id, Msg: fmt.Sprintf("parent chain longer than %d", MaxDepth)})
			}
			n := b.file.Node(id)
			parent := n.base().parent
			if parent == NoNode {
				f, ok := n.(*File)
				if !ok {
					panic(&InvariantError{Node: id, Msg: fmt.Sprintf("chain ends at %T, not a file", n)})
				}
				return f
			}
			id = parent
		}
	})
}

// attach builds n's range, locates the root through parent and registers n
// in the root's arena.
func attach(n Node, parent Node, start, end int) {
	if parent == nil {
		panic(&InvariantError{Node: NoNode, Msg: fmt.Sprintf("%T constructed without a parent", n)})
	}
	root := parent.Root()
	b := n.base()
	b.file = root
	b.parent = parent.ID()
	b.rng = source.NewRange(root, start, end)
	b.id = NodeID(len(root.nodes))
	root.nodes = append(root.nodes, n)
}

// InvariantError reports a malformed tree: a parent chain that does not end
// at the file or an unknown statement variant. It is raised with panic and
// aborts the analysis of the file.
type InvariantError struct {
	Node NodeID
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("ast: invariant violated at node %d: %s", e.Node, e.Msg)
}

// Scope is implemented by the ancestors that declare names: architectures,
// generate and block statements, processes and loops.
type Scope interface {
	Node
	scope()
}

func (*Architecture) scope() {}
func (*Generate) scope()     {}
func (*Process) scope()      {}
func (*Loop) scope()         {}

// Scopes yields the scope-bearing ancestors of n, nearest first.
func Scopes(n Node) iter.Seq[Scope] {
	return func(yield func(Scope) bool) {
		steps := 0
		for p := n.Parent(); p != nil; p = p.Parent() {
			if steps++; steps > MaxDepth {
				panic(&InvariantError{Node: n.ID(), Msg: fmt.Sprintf("parent chain longer than %d", MaxDepth)})
			}
			if s, ok := p.(Scope); ok {
				if !yield(s) {
					return
				}
			}
		}
	}
}

// SameName compares identifiers the way VHDL does.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
