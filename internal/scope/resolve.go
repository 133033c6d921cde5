// Package scope answers whether an identifier occurrence is bound to a
// declaration visible from where it appears.
//
// Resolution is an existence check. A name declared anywhere on the path
// from the occurrence to the file resolves, regardless of which declaration
// is nearest; shadowing is not modelled.
package scope

import "github.com/robert-at-pretension-io/vhdl-sema/internal/ast"

// ResolveRead looks up the declaration a read refers to. Imported packages
// are searched first, in order, and the first package with a match wins.
// Then every scope between the read and the file is searched, and finally
// the generics and ports of the file's entity and the enumeration types of
// its architecture.
func ResolveRead(read *ast.Read, packages []*ast.Package) (ast.Node, bool) {
	for _, pkg := range packages {
		if n, ok := lookupPackage(pkg, read); ok {
			return n, true
		}
	}

	for s := range ast.Scopes(read) {
		if n := lookupScopeRead(s, read); n != nil {
			return n, true
		}
	}

	root := read.Root()
	if ent := root.BoundEntity(); ent != nil && root.Architecture != nil {
		for _, g := range ent.Generics {
			if ast.SameName(g.Name, read.Text) {
				return g, true
			}
		}
		for _, p := range ent.Ports {
			if ast.SameName(p.Name, read.Text) {
				return p, true
			}
		}
		if n, ok := lookupStates(root.Architecture.Types, read.Text); ok {
			return n, true
		}
	}
	return nil, false
}

// ResolveWrite reports whether a write targets something assignable:
// a signal of an enclosing body, a variable of the enclosing process, a
// signal of the file's architecture, an out or inout port of its entity, or
// an enumeration literal.
func ResolveWrite(write *ast.Write) bool {
	for s := range ast.Scopes(write) {
		switch s := s.(type) {
		case *ast.Architecture:
			if lookupSignal(s.Signals, write.Text) != nil {
				return true
			}
		case *ast.Generate:
			if lookupSignal(s.Signals, write.Text) != nil {
				return true
			}
		case *ast.Process:
			if lookupProcess(s, write.Text, false) != nil {
				return true
			}
		}
	}

	root := write.Root()
	if arch := root.Architecture; arch != nil {
		if lookupSignal(arch.Signals, write.Text) != nil {
			return true
		}
	}
	if ent := root.BoundEntity(); ent != nil {
		for _, p := range ent.Ports {
			if p.Direction.Writable() && ast.SameName(p.Name, write.Text) {
				return true
			}
		}
	}
	if arch := root.Architecture; arch != nil {
		if _, ok := lookupStates(arch.Types, write.Text); ok {
			return true
		}
	}
	return false
}

func lookupScopeRead(s ast.Scope, read *ast.Read) ast.Node {
	switch s := s.(type) {
	case *ast.Architecture:
		return lookupBodyRead(&s.Body, read)
	case *ast.Generate:
		if s.Kind == ast.ForGenerate && ast.SameName(s.Variable, read.Text) {
			return s
		}
		return lookupBodyRead(&s.Body, read)
	case *ast.Process:
		return lookupProcess(s, read.Text, true)
	case *ast.Loop:
		if s.Variable != "" && ast.SameName(s.Variable, read.Text) {
			return s
		}
	}
	return nil
}

func lookupPackage(pkg *ast.Package, read *ast.Read) (ast.Node, bool) {
	if !read.Element && ast.SameName(pkg.Name, read.Text) {
		return pkg, true
	}
	for _, c := range pkg.Constants {
		if ast.SameName(c.Name, read.Text) {
			return c, true
		}
	}
	if s := lookupSignal(pkg.Signals, read.Text); s != nil {
		return s, true
	}
	for _, f := range pkg.Functions {
		if ast.SameName(f.Name, read.Text) {
			return f, true
		}
	}
	return lookupTypes(pkg.Types, read)
}

// lookupBodyRead searches the declarations of an architecture or generate.
func lookupBodyRead(b *ast.Body, read *ast.Read) ast.Node {
	if s := lookupSignal(b.Signals, read.Text); s != nil {
		return s
	}
	for _, c := range b.Constants {
		if ast.SameName(c.Name, read.Text) {
			return c
		}
	}
	for _, f := range b.Functions {
		if ast.SameName(f.Name, read.Text) {
			return f
		}
	}
	if n, ok := lookupTypes(b.Types, read); ok {
		return n
	}
	return nil
}

// lookupTypes matches a type name, one of its enumeration literals, or, for
// element reads only, a record field.
func lookupTypes(types []*ast.Type, read *ast.Read) (ast.Node, bool) {
	for _, t := range types {
		if ast.SameName(t.Name, read.Text) {
			return t, true
		}
		for _, s := range t.States {
			if ast.SameName(s.Name, read.Text) {
				return s, true
			}
		}
		if read.Element {
			for _, f := range t.Fields {
				if ast.SameName(f.Name, read.Text) {
					return f, true
				}
			}
		}
	}
	return nil, false
}

func lookupStates(types []*ast.Type, name string) (ast.Node, bool) {
	for _, t := range types {
		for _, s := range t.States {
			if ast.SameName(s.Name, name) {
				return s, true
			}
		}
	}
	return nil, false
}

func lookupSignal(signals []*ast.Signal, name string) *ast.Signal {
	for _, s := range signals {
		if ast.SameName(s.Name, name) {
			return s
		}
	}
	return nil
}

// lookupProcess matches process variables, and for reads also the process's
// constants, subprograms and types.
func lookupProcess(p *ast.Process, name string, read bool) ast.Node {
	for _, v := range p.Variables {
		if ast.SameName(v.Name, name) {
			return v
		}
	}
	if !read {
		return nil
	}
	for _, c := range p.Constants {
		if ast.SameName(c.Name, name) {
			return c
		}
	}
	for _, f := range p.Functions {
		if ast.SameName(f.Name, name) {
			return f
		}
	}
	for _, t := range p.Types {
		if ast.SameName(t.Name, name) {
			return t
		}
		for _, s := range t.States {
			if ast.SameName(s.Name, name) {
				return s
			}
		}
	}
	return nil
}
