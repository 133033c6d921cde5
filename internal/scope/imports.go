package scope

import (
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/stdlib"
)

// PackageLookup finds a project package by library and name.
type PackageLookup func(library, name string) (*ast.Package, bool)

// LinkUses resolves the use clauses of f and installs the imported packages
// on it, std.standard first and then in clause order. The library work
// means f's own library. Predeclared std and ieee packages take precedence
// over project packages of the same name. Use clauses that name no known
// package are returned.
func LinkUses(f *ast.File, lookup PackageLookup) []*ast.UseClause {
	pkgs := []*ast.Package{stdlib.Standard()}
	seen := map[*ast.Package]bool{pkgs[0]: true}
	var unresolved []*ast.UseClause
	for _, u := range f.Uses {
		if u.Package == "" {
			// use lib; makes nothing visible by itself
			continue
		}
		pkg, ok := findPackage(f, u, lookup)
		if !ok {
			unresolved = append(unresolved, u)
			continue
		}
		if !seen[pkg] {
			seen[pkg] = true
			pkgs = append(pkgs, pkg)
		}
	}
	f.SetPackages(pkgs)
	return unresolved
}

func findPackage(f *ast.File, u *ast.UseClause, lookup PackageLookup) (*ast.Package, bool) {
	library := u.Library
	if strings.EqualFold(library, "work") {
		library = f.Library
	}
	if pkg, ok := stdlib.Package(library, u.Package); ok {
		return pkg, true
	}
	if lookup != nil {
		return lookup(library, u.Package)
	}
	return nil, false
}
