package lint

import (
	"fmt"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

// CheckResets reports register signals that no register process of their
// body resets. The diagnostic spans the first line of the process that
// registers the signal.
func (l *Linter) CheckResets() []Diagnostic {
	var diags []Diagnostic
	for _, body := range l.bodies() {
		for _, s := range body.Signals {
			if !s.IsRegister() {
				continue
			}
			if resetByAny(body.Processes, s.Name) {
				continue
			}
			proc, _ := s.RegisterProcess()
			start := proc.Range().Start.Coordinate()
			span := source.Span{
				Start: start,
				End:   source.Coordinate{Line: start.Line, Character: source.EndOfLine},
			}
			diags = append(diags, l.diagnostic(RuleMissingReset, fmt.Sprintf("Reset '%s' missing", s.Name), span))
		}
	}
	return diags
}

func resetByAny(procs []*ast.Process, name string) bool {
	for _, p := range procs {
		if p.ResetsName(name) {
			return true
		}
	}
	return false
}
