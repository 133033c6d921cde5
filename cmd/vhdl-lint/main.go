// =============================================================================
// VHDL Semantic Linter - Main Entry Point
// =============================================================================
//
// THE PIPELINE:
//   1. The parser turns every VHDL file into its own syntax tree
//   2. The indexer builds the cross-file symbol table and links use clauses
//      and architecture-only files to the design units they name
//   3. The linter reports undeclared signals and missing resets per file
//   4. OPA applies the configured rule severities
//   5. CUE enforces the output contract (crash on schema mismatch)
//   6. Diagnostics are reported with file/line locations
//
// WHEN INVESTIGATING FALSE POSITIVES:
//   Start at the beginning of the pipeline, not the end!
//   Parser issues → Scope issues → Lint issues → Policy issues
// =============================================================================

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/config"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/indexer"
)

type options struct {
	verbose    bool
	jsonOutput bool
	timing     bool
	configPath string
	policyDir  string
	path       string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
		return
	case "-h", "--help", "help":
		printUsage()
		return
	case "clear-cache":
		opts := parseArgs(os.Args[2:])
		runClearCache(opts)
		return
	}

	opts := parseArgs(os.Args[1:])
	os.Exit(runLint(opts))
}

func parseArgs(args []string) options {
	var opts options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "--verbose":
			opts.verbose = true
		case "--json":
			opts.jsonOutput = true
		case "--timing":
			opts.timing = true
		case "-c", "--config":
			i++
			if i >= len(args) {
				usageError("missing config file after " + args[i-1])
			}
			opts.configPath = args[i]
		case "--policy":
			i++
			if i >= len(args) {
				usageError("missing policy directory after --policy")
			}
			opts.policyDir = args[i]
		default:
			if opts.path != "" {
				usageError("unexpected argument " + args[i])
			}
			opts.path = args[i]
		}
	}
	if opts.path == "" {
		usageError("no path given")
	}
	return opts
}

func usageError(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n\n", msg)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: vhdl-lint [command] [options] <path>

Commands:
  init [--hcl]        Create a vhdl_lint.json (or vhdl_lint.hcl) configuration file
  clear-cache <path>  Remove the stored result cache for <path>
  <path>              Lint VHDL files in the given directory or file

Options:
  -v, --verbose       Enable verbose output and debug logging on stderr
  -c, --config        Specify config file: vhdl-lint -c vhdl_lint.hcl <path>
  --json              Print the result as JSON
  --policy <dir>      Use the .rego files in <dir> instead of the built-in policy
  --timing            Write per-stage timing events to timing.jsonl
  -h, --help          Show this help message

Configuration:
  vhdl-lint looks for configuration in:
    1. ./vhdl_lint.json, ./.vhdl_lint.json, ./vhdl_lint.hcl
    2. the same names under <path>
    3. ~/.config/vhdl_lint/config.json

  Run 'vhdl-lint init' to create a default configuration file.

Exit status is 1 when any error diagnostic or file error is reported.`)
}

const hclTemplate = `standard = "2008"

library "work" {
  files = ["*.vhd", "*.vhdl", "**/*.vhd", "**/*.vhdl"]
}

lint {
  rules = {
    "undeclared-signal" = "error"
    "missing-reset"     = "error"
    "unresolved-use"    = "info"
  }
  ignore_patterns = []
}

analysis {
  follow_library_use = true
  cache {
    enabled = true
    dir     = ".vhdl_lint_cache"
  }
}
`

func runInit(args []string) {
	configPath := "vhdl_lint.json"
	useHCL := len(args) > 0 && args[0] == "--hcl"
	if useHCL {
		configPath = "vhdl_lint.hcl"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	var err error
	if useHCL {
		err = os.WriteFile(configPath, []byte(hclTemplate), 0644)
	} else {
		err = config.DefaultConfig().Save(configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Library file patterns")
	fmt.Println("  - Third-party library detection")
	fmt.Println("  - Lint rule severities")
}

func loadConfig(opts options) (*config.Config, error) {
	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", opts.configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runLint(opts options) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	idx := indexer.NewWithConfig(cfg)
	idx.Verbose = opts.verbose
	idx.JSONOutput = opts.jsonOutput
	idx.Timing = opts.timing
	idx.PolicyDir = opts.policyDir
	idx.Logger = newLogger(opts.verbose)
	idx.Color = !opts.jsonOutput && term.IsTerminal(int(os.Stdout.Fd()))

	result, err := idx.Run(ctx, opts.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result == nil {
			return 1
		}
	}
	if result.Summary.Errors > 0 || len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func runClearCache(opts options) {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dir, err := indexer.ClearCache(opts.path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Cleared result cache in %s\n", dir)
}
