// Package lint runs the semantic checks over one parsed design file and
// reports findings as diagnostics anchored to source ranges.
package lint

import (
	"fmt"
	"log/slog"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/scope"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

// Rule names
const (
	RuleUndeclared    = "undeclared-signal"
	RuleMissingReset  = "missing-reset"
	RuleUnresolvedUse = "unresolved-use"
)

// Severity levels
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// DefaultSeverity is the severity each rule reports with before policy is
// applied.
var DefaultSeverity = map[string]string{
	RuleUndeclared:    SeverityError,
	RuleMissingReset:  SeverityError,
	RuleUnresolvedUse: SeverityInfo,
}

// Diagnostic is one finding. Coordinates are 0-based; an end character of
// source.EndOfLine extends to the end of the line.
type Diagnostic struct {
	Rule     string      `json:"rule"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
	File     string      `json:"file"`
	Range    source.Span `json:"range"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", d.File, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message, d.Rule)
}

// Options configure a Linter.
type Options struct {
	// Entities finds entities for entity instantiations and for component
	// instantiations without a visible component declaration.
	Entities scope.EntityLookup
	Logger   *slog.Logger
}

// Linter checks a single file. The file's imported packages must be
// installed before checking, see scope.LinkUses.
type Linter struct {
	file     *ast.File
	entities scope.EntityLookup
	log      *slog.Logger
}

// New creates a linter for f.
func New(f *ast.File, opts Options) *Linter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Linter{
		file:     f,
		entities: opts.Entities,
		log:      logger.With("file", f.Path),
	}
}

// CheckAll runs every check. An invariant violation in the tree aborts the
// run and is returned as an error without partial results.
func (l *Linter) CheckAll() (diags []Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *ast.InvariantError:
				diags, err = nil, fmt.Errorf("analyzing %s: %w", l.file.Path, e)
			case *source.RangeError:
				diags, err = nil, fmt.Errorf("analyzing %s: %w", l.file.Path, e)
			default:
				panic(r)
			}
		}
	}()
	diags = append(diags, l.CheckUndeclared()...)
	diags = append(diags, l.CheckResets()...)
	l.log.Debug("lint finished", "diagnostics", len(diags))
	return diags, nil
}

func (l *Linter) diagnostic(rule, msg string, span source.Span) Diagnostic {
	return Diagnostic{
		Rule:     rule,
		Severity: DefaultSeverity[rule],
		Message:  msg,
		File:     l.file.Path,
		Range:    span,
	}
}

// bodies returns the architecture body followed by the bodies of its
// generate and block statements, depth first.
func (l *Linter) bodies() []*ast.Body {
	arch := l.file.Architecture
	if arch == nil {
		return nil
	}
	out := []*ast.Body{&arch.Body}
	var walk func(gens []*ast.Generate)
	walk = func(gens []*ast.Generate) {
		for _, g := range gens {
			out = append(out, &g.Body)
			walk(g.Generates)
		}
	}
	walk(arch.Generates)
	return out
}
