// vhdl-tree prints the syntax tree of one VHDL file as JSON. The export is
// checked against the #TreeExport contract before it is written.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/ast"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/parser"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/scope"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/validator"
)

func main() {
	output := flag.String("output", "", "write tree JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write tree JSON to file (shorthand)")
	library := flag.String("library", "work", "library the file is analyzed into")
	compact := flag.Bool("compact", false, "write JSON without indentation")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: vhdl-tree [--output file] [--library name] [--compact] <file.vhd>")
		os.Exit(1)
	}

	f, err := parser.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	f.Library = *library

	// Only the predeclared std and ieee packages are known to a single file.
	for _, u := range scope.LinkUses(f, nil) {
		fmt.Fprintf(os.Stderr, "Warning: %s:%d: package '%s' not found\n", f.Path, u.Range().Start.Line()+1, u.Qualified())
	}

	tree := ast.Export(f)

	v, err := validator.NewTreeValidator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize CUE validator: %v\n", err)
		os.Exit(1)
	}
	if err := v.Validate(tree); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Tree contract violation: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing tree: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	enc := json.NewEncoder(out)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(tree); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding tree: %v\n", err)
		os.Exit(1)
	}
}
