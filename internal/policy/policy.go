// Package policy applies the project's severity policy to lint diagnostics.
// The policy is a Rego module: the built-in one maps each rule to its
// configured severity, and a project can replace it with its own modules.
package policy

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/lint"
)

//go:embed rules/*.rego
var builtinRules embed.FS

const (
	violationsQuery = "data.vhdl.lint.all_violations"
	summaryQuery    = "data.vhdl.lint.summary"
)

// Engine evaluates the severity policy against diagnostics
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Result contains the evaluation results
type Result struct {
	Violations []lint.Diagnostic
	Summary    Summary
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Input is the data structure passed to OPA
type Input struct {
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	// Rules maps rule names to configured severities, "off" drops the rule
	Rules map[string]string `json:"rules"`
}

// New creates a policy engine. With an empty policyDir the built-in policy is
// used; otherwise every .rego file in policyDir is loaded instead. The
// modules must define data.vhdl.lint.all_violations and data.vhdl.lint.summary.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}
	var opts []func(*rego.Rego)
	for _, m := range modules {
		opts = append(opts, rego.Module(m.name, string(m.content)))
	}
	for name, q := range map[string]string{"violations": violationsQuery, "summary": summaryQuery} {
		opts := append(opts[:len(opts):len(opts)], rego.Query(q))
		query, err := rego.New(opts...).PrepareForEval(ctx)
		if err != nil {
			return nil, fmt.Errorf("preparing %s query: %w", name, err)
		}
		engine.queries[name] = query
	}
	return engine, nil
}

type module struct {
	name    string
	content []byte
}

func loadModules(policyDir string) ([]module, error) {
	var modules []module
	if policyDir == "" {
		entries, err := builtinRules.ReadDir("rules")
		if err != nil {
			return nil, fmt.Errorf("reading built-in policy: %w", err)
		}
		for _, e := range entries {
			content, err := builtinRules.ReadFile("rules/" + e.Name())
			if err != nil {
				return nil, fmt.Errorf("reading built-in policy %s: %w", e.Name(), err)
			}
			modules = append(modules, module{name: e.Name(), content: content})
		}
		return modules, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, fmt.Errorf("finding policy files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no policy files found in %s", policyDir)
	}
	sort.Strings(files)
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		modules = append(modules, module{name: f, content: content})
	}
	return modules, nil
}

// Fingerprint hashes the policy modules New would load for policyDir, so
// cached results can be invalidated when the policy changes.
func Fingerprint(policyDir string) (string, error) {
	modules, err := loadModules(policyDir)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, m := range modules {
		h.Write([]byte(filepath.Base(m.name)))
		h.Write([]byte{0})
		h.Write(m.content)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Evaluate runs the policy against the input data. Violations keep the order
// of input.Diagnostics.
func (e *Engine) Evaluate(ctx context.Context, input Input) (*Result, error) {
	if input.Diagnostics == nil {
		input.Diagnostics = []lint.Diagnostic{}
	}
	if input.Rules == nil {
		input.Rules = map[string]string{}
	}

	// Convert input to map for OPA
	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{Violations: []lint.Diagnostic{}}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if err := remarshal(rs[0].Expressions[0].Value, &result.Violations); err != nil {
			return nil, fmt.Errorf("decoding violations: %w", err)
		}
	}

	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

// Helper functions
func structToMap(v interface{}) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := remarshal(v, &result)
	return result, err
}

func remarshal(from, to interface{}) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
