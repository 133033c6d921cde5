package validator

// =============================================================================
// VALIDATOR PHILOSOPHY: CRASH EARLY, CRASH LOUD
// =============================================================================
//
// The CUE schemas are the contract between the analyzer and whatever reads
// its output: editors, CI scripts, the tree dump consumers.
//
// If a field is renamed or a severity string drifts, consumers silently
// see nothing. Validation turns that into an immediate error naming the
// field, e.g. "diagnostics.0.severity: 3 errors in empty disjunction".
//
// WHEN VALIDATION FAILS:
// 1. DON'T suppress the error or loosen the schema to make it pass
// 2. DO trace back: is this a parser bug, a linter bug or an output bug?
// 3. DO fix at the source, then update the schema only if the contract
//    really changed
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed output_schema.cue
var outputSchemaFS embed.FS

//go:embed tree_schema.cue
var treeSchemaFS embed.FS

//go:embed config_schema.cue
var configSchemaFS embed.FS

// Validator checks data against one definition of an embedded CUE schema.
type Validator struct {
	ctx        *cue.Context
	schema     cue.Value
	definition string
	what       string
}

func newValidator(fs embed.FS, file, definition, what string) (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s schema: %w", what, err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", what, schema.Err())
	}

	return &Validator{
		ctx:        ctx,
		schema:     schema,
		definition: definition,
		what:       what,
	}, nil
}

// NewOutputValidator creates a validator for linter output (#LintOutput).
func NewOutputValidator() (*Validator, error) {
	return newValidator(outputSchemaFS, "output_schema.cue", "#LintOutput", "output")
}

// NewTreeValidator creates a validator for syntax tree exports (#TreeExport).
func NewTreeValidator() (*Validator, error) {
	return newValidator(treeSchemaFS, "tree_schema.cue", "#TreeExport", "tree")
}

// NewConfigValidator creates a validator for configuration files (#Config).
func NewConfigValidator() (*Validator, error) {
	return newValidator(configSchemaFS, "config_schema.cue", "#Config", "config")
}

// Validate checks that data, once marshaled to JSON, conforms to the schema.
// Returns nil if valid, or a detailed error explaining what failed.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s to JSON: %w", v.what, err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the schema
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	unified, err := v.unify(jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", v.what, err)
	}
	return nil
}

// ValidationErrors returns every validation error for data, one message per
// failing field.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	unified, err := v.unify(jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

func (v *Validator) unify(jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling %s as CUE: %w", v.what, dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(v.definition))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", v.definition, def.Err())
	}

	return def.Unify(dataValue), nil
}
