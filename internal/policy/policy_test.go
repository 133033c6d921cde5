package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/lint"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/source"
)

func diag(rule, severity string, line int) lint.Diagnostic {
	return lint.Diagnostic{
		Rule:     rule,
		Severity: severity,
		Message:  rule + " finding",
		File:     "top.vhd",
		Range: source.Span{
			Start: source.Coordinate{Line: line, Character: 2},
			End:   source.Coordinate{Line: line, Character: source.EndOfLine},
		},
	}
}

func TestBuiltinPolicySeverities(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "")
	require.NoError(t, err)

	undeclared := diag(lint.RuleUndeclared, lint.SeverityError, 3)
	reset := diag(lint.RuleMissingReset, lint.SeverityError, 7)
	use := diag(lint.RuleUnresolvedUse, lint.SeverityInfo, 1)

	tests := []struct {
		name  string
		rules map[string]string
		want  []lint.Diagnostic
		sum   Summary
	}{
		{
			name: "defaults",
			want: []lint.Diagnostic{undeclared, reset, use},
			sum:  Summary{TotalViolations: 3, Errors: 2, Info: 1},
		},
		{
			name:  "downgrade",
			rules: map[string]string{lint.RuleMissingReset: "warning"},
			want: []lint.Diagnostic{
				undeclared,
				func() lint.Diagnostic { d := reset; d.Severity = "warning"; return d }(),
				use,
			},
			sum: Summary{TotalViolations: 3, Errors: 1, Warnings: 1, Info: 1},
		},
		{
			name:  "off",
			rules: map[string]string{lint.RuleUnresolvedUse: "off", lint.RuleUndeclared: "off"},
			want:  []lint.Diagnostic{reset},
			sum:   Summary{TotalViolations: 1, Errors: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Evaluate(ctx, Input{
				Diagnostics: []lint.Diagnostic{undeclared, reset, use},
				Rules:       tt.rules,
			})
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, result.Violations); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
			require.Equal(t, tt.sum, result.Summary)
		})
	}
}

func TestEvaluateEmpty(t *testing.T) {
	ctx := context.Background()
	engine, err := New(ctx, "")
	require.NoError(t, err)

	result, err := engine.Evaluate(ctx, Input{})
	require.NoError(t, err)
	require.NotNil(t, result.Violations)
	require.Empty(t, result.Violations)
	require.Equal(t, Summary{}, result.Summary)
}

const strictPolicy = `package vhdl.lint

import rego.v1

all_violations := [v |
	some d in input.diagnostics
	v := object.union(d, {"severity": "error"})
]

summary := {
	"total_violations": count(all_violations),
	"errors": count(all_violations),
	"warnings": 0,
	"info": 0,
}
`

func TestPolicyDirReplacesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strict.rego"), []byte(strictPolicy), 0o644))

	ctx := context.Background()
	engine, err := New(ctx, dir)
	require.NoError(t, err)

	result, err := engine.Evaluate(ctx, Input{
		Diagnostics: []lint.Diagnostic{diag(lint.RuleUnresolvedUse, lint.SeverityInfo, 0)},
		Rules:       map[string]string{lint.RuleUnresolvedUse: "off"},
	})
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	require.Equal(t, "error", result.Violations[0].Severity)
	require.Equal(t, Summary{TotalViolations: 1, Errors: 1}, result.Summary)
}

func TestPolicyDirErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, t.TempDir())
	require.ErrorContains(t, err, "no policy files found")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("package vhdl.lint\n\nall_violations := [\n"), 0o644))
	_, err = New(ctx, dir)
	require.Error(t, err)
}

func TestFingerprintTracksPolicySource(t *testing.T) {
	builtin, err := Fingerprint("")
	require.NoError(t, err)
	again, err := Fingerprint("")
	require.NoError(t, err)
	require.Equal(t, builtin, again)

	dir := t.TempDir()
	path := filepath.Join(dir, "strict.rego")
	require.NoError(t, os.WriteFile(path, []byte(strictPolicy), 0o644))
	custom, err := Fingerprint(dir)
	require.NoError(t, err)
	require.NotEqual(t, builtin, custom)

	require.NoError(t, os.WriteFile(path, []byte(strictPolicy+"\n# tweak\n"), 0o644))
	changed, err := Fingerprint(dir)
	require.NoError(t, err)
	require.NotEqual(t, custom, changed)
}
