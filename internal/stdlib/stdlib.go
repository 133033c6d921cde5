// Package stdlib provides the predeclared packages of the std and ieee
// libraries as parsed trees, so use clauses naming them resolve like any
// project package.
package stdlib

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/parser"
)

//go:embed vhdl/*.vhd
var sources embed.FS

// units maps each embedded file to the library it belongs to.
var units = []struct {
	library string
	file    string
}{
	{"std", "standard.vhd"},
	{"std", "textio.vhd"},
	{"std", "env.vhd"},
	{"ieee", "std_logic_1164.vhd"},
	{"ieee", "numeric_std.vhd"},
	{"ieee", "math_real.vhd"},
	{"ieee", "std_logic_arith.vhd"},
	{"ieee", "std_logic_unsigned.vhd"},
}

var (
	loadOnce sync.Once
	packages map[string]*ast.Package
)

func load() {
	packages = make(map[string]*ast.Package, len(units))
	for _, u := range units {
		name := path.Join("vhdl", u.file)
		content, err := sources.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("CRITICAL: embedded package %s missing: %v", name, err))
		}
		f, err := parser.Parse(u.library+"/"+u.file, string(content))
		if err != nil {
			panic(fmt.Sprintf("CRITICAL: embedded package %s does not parse: %v", name, err))
		}
		if f.Package == nil {
			panic(fmt.Sprintf("CRITICAL: embedded file %s declares no package", name))
		}
		f.Library = u.library
		// Trees are shared by every analysis; settle the lazily computed
		// root links while still single-threaded.
		for _, n := range f.Nodes() {
			n.Root()
		}
		packages[key(u.library, f.Package.Name)] = f.Package
	}
}

func key(library, name string) string {
	return strings.ToLower(library + "." + name)
}

// Package returns the predeclared package library.name. Names are case
// insensitive.
func Package(library, name string) (*ast.Package, bool) {
	loadOnce.Do(load)
	pkg, ok := packages[key(library, name)]
	return pkg, ok
}

// Standard returns std.standard, which every design file uses implicitly.
func Standard() *ast.Package {
	pkg, _ := Package("std", "standard")
	return pkg
}
