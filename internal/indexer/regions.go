package indexer

import (
	"regexp"
	"strings"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/lint"
)

var regionPragma = regexp.MustCompile(`(?i)^\s*--\s*vhdl_lint\s+(off|on)\b`)

// ignoredLines returns the 0-based lines between a "-- vhdl_lint off"
// comment and the next "-- vhdl_lint on" (or the end of the file).
func ignoredLines(text string) map[int]bool {
	ignored := make(map[int]bool)
	off := false
	for i, line := range strings.Split(text, "\n") {
		if m := regionPragma.FindStringSubmatch(line); m != nil {
			off = strings.EqualFold(m[1], "off")
			continue
		}
		if off {
			ignored[i] = true
		}
	}
	return ignored
}

// filterIgnoredRegions drops diagnostics that start inside an ignored region.
func filterIgnoredRegions(text string, diags []lint.Diagnostic) []lint.Diagnostic {
	if !strings.Contains(strings.ToLower(text), "vhdl_lint") {
		return diags
	}
	ignored := ignoredLines(text)
	kept := diags[:0:0]
	for _, d := range diags {
		if !ignored[d.Range.Start.Line] {
			kept = append(kept, d)
		}
	}
	return kept
}
