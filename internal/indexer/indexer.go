package indexer

// =============================================================================
// INDEXER PHILOSOPHY: TRUST THE TREE, VALIDATE WITH CUE
// =============================================================================
//
// The indexer sits between the parser and the reports. Its job is to:
// 1. Parse every project file into its own tree
// 2. Build the cross-file symbol table of entities, packages and components
// 3. Link each tree to the packages it uses and the entity it implements
// 4. Lint each tree and push the findings through the severity policy
//
// IMPORTANT: The indexer should NOT work around parser or resolver bugs!
//
// If a diagnostic is wrong, trace it back: is the tree missing a construct
// (internal/parser), or does the lookup miss a scope (internal/scope)? Fix it
// there, never by filtering diagnostics here.
//
// The CUE validator (internal/validator) checks the final output against the
// #LintOutput contract. If validation fails, our contract is broken - fix
// the source, don't suppress the error.
// =============================================================================

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/config"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/lint"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/parser"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/policy"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/scope"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/validator"
)

// Indexer is the cross-file linker that builds the symbol table, links
// design units across files and lints every project file.
type Indexer struct {
	// Configuration loaded from vhdl_lint.json or vhdl_lint.hcl
	Config *config.Config

	// Global symbol table: library.name -> design unit
	Symbols *SymbolTable

	// Parsed trees of all files, in file order
	Trees []*ast.File

	// Resolved library information (file -> library mapping)
	FileLibraries map[string]config.FileLibraryInfo

	// Third-party files (indexed for lookups, never reported on)
	ThirdPartyFiles map[string]bool

	// PolicyDir replaces the built-in severity policy when set
	PolicyDir string

	// Verbose output
	Verbose bool

	// JSON output mode
	JSONOutput bool

	// Color enables coloured severity icons in text mode
	Color bool

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Out receives the report, os.Stdout by default
	Out io.Writer

	// Logger traces the pipeline; discarded by default
	Logger *slog.Logger
}

// LintResult is the structured result of running the linter
// This can be serialized to JSON for programmatic consumption
type LintResult struct {
	// Diagnostics kept by the severity policy
	Diagnostics []lint.Diagnostic `json:"diagnostics"`

	// Files that could not be parsed or analyzed
	Errors []FileError `json:"errors"`

	// Summary counts
	Summary policy.Summary `json:"summary"`

	// Analysis statistics
	Stats AnalysisStats `json:"stats"`

	// Per-file breakdown
	Files []FileResult `json:"files"`
}

// AnalysisStats provides counts of analyzed design units
type AnalysisStats struct {
	Files         int `json:"files"`
	Symbols       int `json:"symbols"`
	Entities      int `json:"entities"`
	Packages      int `json:"packages"`
	Architectures int `json:"architectures"`
	Processes     int `json:"processes"`
	Instances     int `json:"instances"`
	Generates     int `json:"generates"`
}

// FileResult provides per-file violation counts
type FileResult struct {
	Path     string `json:"path"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Info     int    `json:"info"`
}

// FileError kinds
const (
	ErrorParse    = "parse"
	ErrorAnalysis = "analysis"
)

// FileError represents a file that failed to parse or analyze
type FileError struct {
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// New creates a new Indexer with default configuration
func New() *Indexer {
	return &Indexer{
		Config:          config.DefaultConfig(),
		Symbols:         NewSymbolTable(),
		FileLibraries:   make(map[string]config.FileLibraryInfo),
		ThirdPartyFiles: make(map[string]bool),
		Out:             os.Stdout,
		Logger:          slog.New(slog.DiscardHandler),
	}
}

// NewWithConfig creates a new Indexer with the given configuration
func NewWithConfig(cfg *config.Config) *Indexer {
	idx := New()
	idx.Config = cfg
	return idx
}

func (idx *Indexer) printf(format string, args ...any) {
	fmt.Fprintf(idx.Out, format, args...)
}

// Run executes the indexing pipeline over rootPath, a directory or a single
// file, writes the report and returns the result.
func (idx *Indexer) Run(ctx context.Context, rootPath string) (*LintResult, error) {
	runStart := time.Now()
	pipelineErrs := make([]error, 0)
	recordPipelineErr := func(err error) {
		pipelineErrs = append(pipelineErrs, err)
	}
	timing := newTimingRecorder(runStart, idx.resolveTimingPath(rootPath))
	if err := timing.Err(); err != nil {
		recordPipelineErr(fmt.Errorf("timing output disabled: %w", err))
	}
	defer timing.Close()

	if idx.Out == nil {
		idx.Out = os.Stdout
	}
	if idx.Logger == nil {
		idx.Logger = slog.New(slog.DiscardHandler)
	}
	log := idx.Logger

	// 0. Load configuration if not already loaded
	if idx.Config == nil {
		cfg, err := config.Load(rootPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		idx.Config = cfg
	}
	rules, err := idx.Config.InferenceRules()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Reset per-run state
	idx.Symbols = NewSymbolTable()
	idx.Trees = nil
	idx.FileLibraries = make(map[string]config.FileLibraryInfo)
	idx.ThirdPartyFiles = make(map[string]bool)

	// 1. Find all VHDL files using configuration
	stepStart := time.Now()
	files, err := idx.scan(rootPath)
	if err != nil {
		return nil, err
	}
	if !idx.JSONOutput {
		idx.printf("Found %d VHDL files\n", len(files))
		if idx.Verbose {
			idx.printf("Standard: VHDL-%s\n", idx.Config.Standard)
		}
	}
	scanDuration := time.Since(stepStart)
	timing.RecordStage("scan", stepStart, scanDuration, "")
	log.Debug("scan finished", "files", len(files), "standard", idx.Config.Standard)

	// 2. Result cache: every file's content hash plus the config and policy
	stepStart = time.Now()
	var cache *resultCache
	var previous *resultCacheEntry
	var hashes map[string]string
	changedFiles := make(map[string]bool)
	if idx.Config.CacheEnabled() {
		cache, hashes, err = idx.openCache(rootPath, files)
		if err != nil {
			recordPipelineErr(fmt.Errorf("cache disabled: %w", err))
			cache = nil
		}
	}
	if cache != nil {
		previous, err = cache.Load()
		if err != nil {
			recordPipelineErr(fmt.Errorf("cache load failed: %w", err))
		}
		if previous.Matches(cache.key, hashes) {
			timing.RecordStage("cache", stepStart, time.Since(stepStart), "hit")
			log.Debug("result cache hit", "dir", cache.dir)
			if err := idx.report(&previous.Result, nil); err != nil {
				return nil, err
			}
			timing.RecordStage("total", runStart, time.Since(runStart), "cached")
			return &previous.Result, joinPipelineErrors(pipelineErrs)
		}
		for f, h := range hashes {
			if previous == nil || previous.Files[f] != h {
				changedFiles[f] = true
			}
		}
	}
	cacheDuration := time.Since(stepStart)
	timing.RecordStage("cache", stepStart, cacheDuration, "miss")

	// 3. Pass 1: Parallel parsing
	stepStart = time.Now()
	result := &LintResult{
		Diagnostics: []lint.Diagnostic{},
		Errors:      []FileError{},
		Files:       []FileResult{},
	}
	trees, parseErrs := idx.parseAll(files, timing)
	result.Errors = append(result.Errors, parseErrs...)
	idx.Trees = trees
	parseDuration := time.Since(stepStart)
	timing.RecordStage("parse", stepStart, parseDuration, "")

	// 4. Pass 2: Symbol table and linking
	stepStart = time.Now()
	for _, f := range idx.Trees {
		f.Library = idx.libraryOf(f.Path)
		f.SetRules(rules)
		idx.registerSymbols(f)
	}
	useDiags := make(map[string][]lint.Diagnostic)
	for _, f := range idx.Trees {
		idx.linkFile(f)
		for _, u := range scope.LinkUses(f, idx.packageLookup(f)) {
			useDiags[f.Path] = append(useDiags[f.Path], unresolvedUse(f, u))
		}
		warmRoots(f)
	}
	linkDuration := time.Since(stepStart)
	timing.RecordStage("link", stepStart, linkDuration, "")

	if cache != nil && idx.Verbose && !idx.JSONOutput && previous != nil && len(changedFiles) > 0 {
		idx.printf("\n=== Cache Impact ===\n")
		dependents := buildDependentsGraph(idx.Trees, idx.Symbols)
		changedList := make([]string, 0, len(changedFiles))
		for f := range changedFiles {
			changedList = append(changedList, f)
		}
		sort.Strings(changedList)
		for _, f := range changedList {
			idx.printf("%s", formatImpactReport(computeImpact(f, dependents)))
		}
	}

	// 5. Pass 3: Parallel linting
	stepStart = time.Now()
	diags, lintErrs := idx.lintAll(useDiags, timing)
	result.Errors = append(result.Errors, lintErrs...)
	lintDuration := time.Since(stepStart)
	timing.RecordStage("lint", stepStart, lintDuration, "")

	// 6. Severity policy
	stepStart = time.Now()
	engine, err := policy.New(ctx, idx.PolicyDir)
	if err != nil {
		return nil, fmt.Errorf("initialize policy engine: %w", err)
	}
	evaluated, err := engine.Evaluate(ctx, policy.Input{
		Diagnostics: diags,
		Rules:       idx.Config.Lint.Rules,
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	applyPolicyResult(result, evaluated)
	result.Stats = idx.stats(len(files))
	policyDuration := time.Since(stepStart)
	timing.RecordStage("policy", stepStart, policyDuration, "")

	// 7. Validate output before anyone reads it (CUE contract enforcement)
	stepStart = time.Now()
	v, err := validator.NewOutputValidator()
	if err != nil {
		return nil, fmt.Errorf("CRITICAL: Failed to initialize CUE validator: %w", err)
	}
	if err := v.Validate(result); err != nil {
		return nil, fmt.Errorf("CRITICAL: Output contract violation: %w", err)
	}
	validateDuration := time.Since(stepStart)
	timing.RecordStage("validate", stepStart, validateDuration, "")

	if cache != nil {
		if err := cache.Save(resultCacheEntry{
			Version: resultCacheVersion,
			Key:     cache.key,
			Files:   hashes,
			Result:  *result,
		}); err != nil {
			recordPipelineErr(fmt.Errorf("cache save failed: %w", err))
		}
	}

	if err := idx.report(result, idx.Trees); err != nil {
		return nil, err
	}

	if idx.Verbose && !idx.JSONOutput {
		idx.printf("\n=== Timing Summary ===\n")
		idx.printf("  scan:     %s\n", formatDuration(scanDuration))
		idx.printf("  cache:    %s\n", formatDuration(cacheDuration))
		idx.printf("  parse:    %s\n", formatDuration(parseDuration))
		idx.printf("  link:     %s\n", formatDuration(linkDuration))
		idx.printf("  lint:     %s\n", formatDuration(lintDuration))
		idx.printf("  policy:   %s\n", formatDuration(policyDuration))
		idx.printf("  validate: %s\n", formatDuration(validateDuration))
		idx.printf("  total:    %s\n", formatDuration(time.Since(runStart)))
	}
	timing.RecordStage("total", runStart, time.Since(runStart), "")

	return result, joinPipelineErrors(pipelineErrs)
}

// scan lists the files to analyze and records their libraries.
func (idx *Indexer) scan(rootPath string) ([]string, error) {
	var files []string

	if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
		files = []string{rootPath}
	} else if len(idx.Config.Libraries) > 0 || len(idx.Config.Files) > 0 {
		libs, err := idx.Config.ResolveLibraries(rootPath)
		if err != nil {
			return nil, fmt.Errorf("resolve libraries: %w", err)
		}

		fileSet := make(map[string]bool)
		for _, lib := range libs {
			for _, f := range lib.Files {
				if fileSet[f] {
					continue
				}
				fileSet[f] = true
				files = append(files, f)
				idx.FileLibraries[f] = config.FileLibraryInfo{
					LibraryName:  lib.Name,
					IsThirdParty: lib.IsThirdParty,
				}
			}
		}
		if len(idx.Config.Files) > 0 {
			// Explicit file entries take precedence over library globs
			for _, f := range files {
				idx.FileLibraries[f] = idx.Config.GetFileLibrary(f, rootPath)
			}
		}

		// Report library info (only in text mode)
		if !idx.JSONOutput {
			idx.printf("Loaded configuration with %d libraries\n", len(libs))
			for _, lib := range libs {
				thirdParty := ""
				if lib.IsThirdParty {
					thirdParty = " (third-party)"
				}
				idx.printf("  %s: %d files%s\n", lib.Name, len(lib.Files), thirdParty)
			}
		}
	}

	// Fallback to directory scan if no files from config
	if len(files) == 0 {
		var err error
		files, err = findVHDLFiles(rootPath)
		if err != nil {
			return nil, fmt.Errorf("scanning files: %w", err)
		}
	}

	// Filter out ignored files
	filtered := files[:0]
	for _, f := range files {
		if idx.Config.ShouldIgnoreFile(f) {
			continue
		}
		filtered = append(filtered, f)
		if idx.FileLibraries[f].IsThirdParty || idx.Config.IsThirdPartyFile(f) {
			idx.ThirdPartyFiles[f] = true
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

func (idx *Indexer) workers() int {
	if n := idx.Config.Analysis.MaxParallelFiles; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// parseAll parses files on a bounded pool of goroutines. Trees come back in
// file order.
func (idx *Indexer) parseAll(files []string, timing *timingRecorder) ([]*ast.File, []FileError) {
	trees := make([]*ast.File, len(files))
	errs := make([]*FileError, len(files))
	progressEnabled := idx.Verbose && !idx.JSONOutput
	if progressEnabled {
		idx.printf("\n=== Parse Progress ===\n")
	}

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	progress := 0
	sem := make(chan struct{}, idx.workers())
	for i, file := range files {
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fileStart := time.Now()
			tree, err := parser.ParseFile(f)
			status := "parsed"
			if err != nil {
				status = "failed"
				errs[i] = &FileError{File: f, Kind: ErrorParse, Message: err.Error()}
			} else {
				trees[i] = tree
			}
			fileDuration := time.Since(fileStart)
			timing.RecordFile("parse", f, status, fileStart, fileDuration)
			idx.Logger.Debug("parsed file", "file", f, "status", status, "duration", fileDuration)
			if progressEnabled {
				progressMu.Lock()
				progress++
				idx.printf("  [%d/%d] %s (%s, %s)\n", progress, len(files), f, status, formatDuration(fileDuration))
				progressMu.Unlock()
			}
		}(i, file)
	}
	wg.Wait()

	var parsed []*ast.File
	var failed []FileError
	for i := range files {
		if errs[i] != nil {
			failed = append(failed, *errs[i])
			continue
		}
		parsed = append(parsed, trees[i])
	}
	return parsed, failed
}

func (idx *Indexer) libraryOf(path string) string {
	if info, ok := idx.FileLibraries[path]; ok && info.LibraryName != "" {
		return strings.ToLower(info.LibraryName)
	}
	return "work"
}

func (idx *Indexer) registerSymbols(f *ast.File) {
	add := func(name, kind string, n ast.Node) {
		sym := Symbol{
			Name: name,
			Kind: kind,
			File: f.Path,
			Line: n.Range().Start.Line() + 1,
			Node: n,
		}
		if prev, ok := idx.Symbols.Get(name); ok && prev.File != f.Path {
			idx.Logger.Warn("design unit declared twice", "name", name, "first", prev.File, "second", f.Path)
		}
		idx.Symbols.Add(sym)
	}

	if e := f.Entity; e != nil {
		add(qualify(f.Library, e.Name), KindEntity, e)
	}
	if p := f.Package; p != nil {
		add(qualify(f.Library, p.Name), KindPackage, p)
		for _, c := range p.Components {
			add(qualify(f.Library, p.Name, c.Name), KindComponent, c)
		}
	}
}

// linkFile binds an architecture-only file to its entity.
func (idx *Indexer) linkFile(f *ast.File) {
	if f.Entity != nil || f.Architecture == nil {
		return
	}
	if e, ok := idx.Symbols.Entity(f.Library, f.Architecture.EntityName); ok {
		f.LinkEntity(e)
		idx.Logger.Debug("linked architecture", "file", f.Path, "entity", e.Name, "from", e.Root().Path)
	}
}

// packageLookup finds project packages for f's use clauses. Unless
// followLibraryUse is set only f's own library is searched.
func (idx *Indexer) packageLookup(f *ast.File) scope.PackageLookup {
	return func(library, name string) (*ast.Package, bool) {
		if !idx.Config.Analysis.FollowLibraryUse && !strings.EqualFold(library, f.Library) {
			return nil, false
		}
		return idx.Symbols.Package(library, name)
	}
}

func unresolvedUse(f *ast.File, u *ast.UseClause) lint.Diagnostic {
	return lint.Diagnostic{
		Rule:     lint.RuleUnresolvedUse,
		Severity: lint.DefaultSeverity[lint.RuleUnresolvedUse],
		Message:  fmt.Sprintf("package '%s.%s' not found", u.Library, u.Package),
		File:     f.Path,
		Range:    u.Range().Span(),
	}
}

// warmRoots fills every node's cached root so other files' goroutines only
// read this tree.
func warmRoots(f *ast.File) {
	for _, n := range f.Nodes() {
		n.Root()
	}
}

// lintAll lints the project's own files in parallel. Diagnostics come back
// in file order, use clause findings first.
func (idx *Indexer) lintAll(useDiags map[string][]lint.Diagnostic, timing *timingRecorder) ([]lint.Diagnostic, []FileError) {
	perFile := make([][]lint.Diagnostic, len(idx.Trees))
	errs := make([]*FileError, len(idx.Trees))
	regions := idx.Config.Lint.IgnoreRegions

	var wg sync.WaitGroup
	sem := make(chan struct{}, idx.workers())
	for i, f := range idx.Trees {
		if idx.ThirdPartyFiles[f.Path] {
			continue
		}
		wg.Add(1)
		go func(i int, f *ast.File) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fileStart := time.Now()
			linter := lint.New(f, lint.Options{
				Entities: idx.Symbols.Entity,
				Logger:   idx.Logger,
			})
			diags, err := linter.CheckAll()
			status := "linted"
			if err != nil {
				status = "failed"
				errs[i] = &FileError{File: f.Path, Kind: ErrorAnalysis, Message: err.Error()}
			} else {
				diags = append(useDiags[f.Path], diags...)
				if regions {
					diags = filterIgnoredRegions(f.Text(), diags)
				}
				perFile[i] = diags
			}
			timing.RecordFile("lint", f.Path, status, fileStart, time.Since(fileStart))
		}(i, f)
	}
	wg.Wait()

	all := []lint.Diagnostic{}
	var failed []FileError
	for i := range idx.Trees {
		if errs[i] != nil {
			failed = append(failed, *errs[i])
			continue
		}
		all = append(all, perFile[i]...)
	}
	return all, failed
}

func (idx *Indexer) stats(files int) AnalysisStats {
	s := AnalysisStats{Files: files, Symbols: idx.Symbols.Len()}
	for _, f := range idx.Trees {
		if f.Entity != nil {
			s.Entities++
		}
		if f.Package != nil {
			s.Packages++
		}
		if a := f.Architecture; a != nil {
			s.Architectures++
			s.Processes += len(a.AllProcesses())
			walkBodies(&a.Body, func(b *ast.Body) {
				s.Instances += len(b.Instantiations)
				s.Generates += len(b.Generates)
			})
		}
	}
	return s
}

func walkBodies(b *ast.Body, fn func(*ast.Body)) {
	fn(b)
	for _, g := range b.Generates {
		walkBodies(&g.Body, fn)
	}
}

func applyPolicyResult(lintResult *LintResult, result *policy.Result) {
	if lintResult == nil || result == nil {
		return
	}
	lintResult.Diagnostics = result.Violations
	lintResult.Summary = result.Summary

	fileViolations := make(map[string]*FileResult)
	for _, v := range result.Violations {
		fr, ok := fileViolations[v.File]
		if !ok {
			fr = &FileResult{Path: v.File}
			fileViolations[v.File] = fr
		}
		switch v.Severity {
		case lint.SeverityError:
			fr.Errors++
		case lint.SeverityWarning:
			fr.Warnings++
		case lint.SeverityInfo:
			fr.Info++
		}
	}
	lintResult.Files = lintResult.Files[:0]
	for _, fr := range fileViolations {
		lintResult.Files = append(lintResult.Files, *fr)
	}
	sort.Slice(lintResult.Files, func(i, j int) bool { return lintResult.Files[i].Path < lintResult.Files[j].Path })
}

// report writes the result. Trees are only needed for verbose output and
// are nil when the result came from the cache.
func (idx *Indexer) report(result *LintResult, trees []*ast.File) error {
	if idx.JSONOutput {
		enc := json.NewEncoder(idx.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	if idx.Verbose && trees != nil {
		idx.printVerbose(trees)
	}

	if len(result.Diagnostics) > 0 {
		idx.printf("\n=== Diagnostics ===\n")
		for _, d := range result.Diagnostics {
			idx.printf("%s [%s] %s:%d:%d - %s\n", idx.icon(d.Severity), d.Rule, d.File,
				d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
		}
	}

	idx.printf("\n=== Summary ===\n")
	idx.printf("  Errors:   %d\n", result.Summary.Errors)
	idx.printf("  Warnings: %d\n", result.Summary.Warnings)
	idx.printf("  Info:     %d\n", result.Summary.Info)

	idx.printf("\n=== Analysis Summary ===\n")
	idx.printf("  Files:         %d\n", result.Stats.Files)
	idx.printf("  Symbols:       %d\n", result.Stats.Symbols)
	idx.printf("  Entities:      %d\n", result.Stats.Entities)
	idx.printf("  Packages:      %d\n", result.Stats.Packages)
	idx.printf("  Architectures: %d\n", result.Stats.Architectures)
	idx.printf("  Processes:     %d\n", result.Stats.Processes)

	if len(result.Errors) > 0 {
		idx.printf("\n=== File Errors ===\n")
		for _, e := range result.Errors {
			idx.printf("  [%s] %s\n", e.Kind, e.Message)
		}
	}
	return nil
}

func (idx *Indexer) icon(severity string) string {
	switch severity {
	case lint.SeverityError:
		if idx.Color {
			return color.Red.Sprint("✗")
		}
		return "✗"
	case lint.SeverityWarning:
		if idx.Color {
			return color.Yellow.Sprint("⚠")
		}
		return "⚠"
	default:
		if idx.Color {
			return color.Cyan.Sprint("ℹ")
		}
		return "ℹ"
	}
}

func (idx *Indexer) printVerbose(trees []*ast.File) {
	idx.printf("\n=== Verbose: Symbols ===\n")
	all := idx.Symbols.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sym := all[name]
		idx.printf("  %s (%s) %s:%d\n", name, sym.Kind, sym.File, sym.Line)
	}

	idx.printf("\n=== Verbose: Files ===\n")
	for _, f := range trees {
		thirdParty := ""
		if idx.ThirdPartyFiles[f.Path] {
			thirdParty = " (third-party)"
		}
		idx.printf("  %s [%s]%s\n", f.Path, f.Library, thirdParty)
		if len(f.Uses) > 0 {
			var uses []string
			for _, u := range f.Uses {
				uses = append(uses, u.Qualified())
			}
			idx.printf("    uses: %s\n", summarizeList(uses, 6))
		}
		if e := f.BoundEntity(); e != nil {
			idx.printf("    entity: %s (%d ports, %d generics)\n", e.Name, len(e.Ports), len(e.Generics))
		}
		a := f.Architecture
		if a == nil {
			continue
		}
		idx.printf("    architecture: %s of %s\n", a.Name, a.EntityName)
		for _, p := range a.AllProcesses() {
			kind := "combinational"
			if p.IsRegisterProcess() {
				kind = "register"
			}
			label := p.Label
			if label == "" {
				label = fmt.Sprintf("line %d", p.Range().Start.Line()+1)
			}
			idx.printf("    process %s: %s\n", label, kind)
			if resets := p.Resets(); len(resets) > 0 {
				idx.printf("      resets: %s\n", strings.Join(resets, ", "))
			}
		}
		var registers []string
		walkBodies(&a.Body, func(b *ast.Body) {
			for _, s := range b.Signals {
				if s.IsRegister() {
					registers = append(registers, s.Name)
				}
			}
		})
		if len(registers) > 0 {
			idx.printf("    registers: %s\n", summarizeList(registers, 8))
		}
	}
}

func joinPipelineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("pipeline errors:\n%s", formatPipelineErrors(errs))
}

func formatPipelineErrors(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func envBool(key string) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "on"
}

func findVHDLFiles(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".vhd" || ext == ".vhdl" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.2fm", d.Minutes())
	default:
		return fmt.Sprintf("%.2fh", d.Hours())
	}
}

func summarizeList(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	sort.Strings(items)
	if len(items) > max {
		return fmt.Sprintf("%s, ... (+%d more)", strings.Join(items[:max], ", "), len(items)-max)
	}
	return strings.Join(items, ", ")
}
