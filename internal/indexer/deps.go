package indexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
)

type dependentsGraph map[string]map[string]bool

// buildDependentsGraph maps each file to the files that depend on it
// through use clauses, entity bindings or instantiations.
func buildDependentsGraph(trees []*ast.File, symbols *SymbolTable) dependentsGraph {
	graph := make(dependentsGraph)
	for _, f := range trees {
		for _, depFile := range resolveDependencies(f, symbols) {
			if depFile == "" || depFile == f.Path {
				continue
			}
			if graph[depFile] == nil {
				graph[depFile] = make(map[string]bool)
			}
			graph[depFile][f.Path] = true
		}
	}
	return graph
}

func resolveDependencies(f *ast.File, symbols *SymbolTable) []string {
	var deps []string
	lookup := func(library string, names ...string) {
		if strings.EqualFold(library, "work") || library == "" {
			library = f.Library
		}
		if sym, ok := symbols.Get(qualify(library, names...)); ok {
			deps = append(deps, sym.File)
		}
	}

	for _, u := range f.Uses {
		if u.Package != "" {
			lookup(u.Library, u.Package)
		}
	}
	a := f.Architecture
	if a == nil {
		return deps
	}
	if f.Entity == nil {
		lookup(f.Library, a.EntityName)
	}
	walkBodies(&a.Body, func(b *ast.Body) {
		for _, inst := range b.Instantiations {
			lookup(inst.Library, inst.ComponentName)
		}
	})
	return deps
}

type impactReport struct {
	Root   string
	Levels [][]string
}

func computeImpact(root string, dependents dependentsGraph) impactReport {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var levels [][]string

	for len(frontier) > 0 {
		var next []string
		for _, f := range frontier {
			for dep := range dependents[f] {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		if len(next) == 0 {
			break
		}
		sort.Strings(next)
		levels = append(levels, next)
		frontier = next
	}

	return impactReport{Root: root, Levels: levels}
}

func formatImpactReport(report impactReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s\n", report.Root))
	for i, level := range report.Levels {
		b.WriteString(fmt.Sprintf("    level %d (%d): %s\n", i+1, len(level), strings.Join(level, ", ")))
	}
	return b.String()
}
