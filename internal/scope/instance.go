package scope

import (
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

// EntityLookup finds an entity by library and name across the project.
type EntityLookup func(library, name string) (*ast.Entity, bool)

// ResolveInstantiation returns the interface an instantiation connects to,
// or nil when it cannot be found. Entity instantiations are looked up by
// library, with work meaning the instantiating file's library. Component
// instantiations use the nearest component declaration in an enclosing body
// or an imported package, then fall back to the entity of the same name.
func ResolveInstantiation(inst *ast.Instantiation, packages []*ast.Package, lookup EntityLookup) ast.Interface {
	root := inst.Root()
	library := inst.Library
	if library == "" || strings.EqualFold(library, "work") {
		library = root.Library
	}

	if inst.Kind == ast.ComponentInstance {
		for s := range ast.Scopes(inst) {
			var comps []*ast.Component
			switch s := s.(type) {
			case *ast.Architecture:
				comps = s.Components
			case *ast.Generate:
				comps = s.Components
			}
			if c := findComponent(comps, inst.ComponentName); c != nil {
				return c
			}
		}
		for _, pkg := range packages {
			if c := findComponent(pkg.Components, inst.ComponentName); c != nil {
				return c
			}
		}
	}

	if lookup != nil {
		if e, ok := lookup(library, inst.ComponentName); ok && e != nil {
			return e
		}
	}
	return nil
}

func findComponent(comps []*ast.Component, name string) *ast.Component {
	for _, c := range comps {
		if ast.SameName(c.Name, name) {
			return c
		}
	}
	return nil
}
