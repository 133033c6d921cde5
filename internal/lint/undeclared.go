package lint

import (
	"fmt"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/scope"
)

// CheckUndeclared reports every write and read that resolves to no visible
// declaration. It covers processes, concurrent assignments, instantiations
// and generate conditions in the architecture and all nested generates.
func (l *Linter) CheckUndeclared() []Diagnostic {
	var diags []Diagnostic
	pkgs := l.file.Packages()

	checkWrites := func(writes []*ast.Write) {
		for _, w := range writes {
			if !scope.ResolveWrite(w) {
				diags = append(diags, l.diagnostic(RuleUndeclared,
					fmt.Sprintf("signal '%s' is written but not declared", w.Text), w.Range().Span()))
			}
		}
	}
	checkReads := func(reads []*ast.Read) {
		for _, r := range reads {
			if _, ok := scope.ResolveRead(r, pkgs); !ok {
				diags = append(diags, l.diagnostic(RuleUndeclared,
					fmt.Sprintf("signal '%s' is read but not declared", r.Text), r.Range().Span()))
			}
		}
	}

	for _, body := range l.bodies() {
		for _, p := range body.Processes {
			l.log.Debug("checking process", "label", p.Label, "writes", len(p.FlatWrites()), "reads", len(p.FlatReads()))
			checkWrites(p.FlatWrites())
			checkReads(p.Sensitivity)
			checkReads(p.FlatReads())
		}
		for _, a := range body.Assignments {
			checkWrites(a.Writes)
			checkReads(a.Reads)
		}
		for _, inst := range body.Instantiations {
			target := scope.ResolveInstantiation(inst, pkgs, l.entities)
			if target == nil {
				l.log.Debug("instantiation target unknown", "label", inst.Label, "name", inst.ComponentName)
			}
			checkWrites(inst.FlatWrites(target))
			checkReads(inst.FlatReads(target))
		}
		for _, g := range body.Generates {
			checkReads(g.Bounds)
			checkReads(g.Condition)
		}
	}
	return diags
}
