package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolvedLibrary contains the expanded file list for a library
type ResolvedLibrary struct {
	Name         string
	Files        []string
	IsThirdParty bool
}

// ResolveLibraries expands all glob patterns and returns resolved file lists.
// Explicit file entries join their library, work when none is given.
// Libraries and their files are sorted by name.
func (c *Config) ResolveLibraries(rootPath string) ([]ResolvedLibrary, error) {
	sets := map[string]map[string]bool{}
	thirdParty := map[string]bool{}

	for libName, libCfg := range c.Libraries {
		fileSet := make(map[string]bool)
		for _, pattern := range libCfg.Files {
			// Silently skip invalid patterns
			matches, _ := expandGlob(absPattern(rootPath, pattern))
			for _, match := range matches {
				if isVHDLFile(match) {
					fileSet[match] = true
				}
			}
		}

		// Remove excluded files
		for _, pattern := range libCfg.Exclude {
			matches, _ := expandGlob(absPattern(rootPath, pattern))
			for _, match := range matches {
				delete(fileSet, match)
			}
		}

		sets[libName] = fileSet
		thirdParty[libName] = libCfg.IsThirdParty
	}

	for _, entry := range c.Files {
		if entry.File == "" || !isVHDLEntry(entry) {
			continue
		}
		lib := entryLibrary(entry)
		if sets[lib] == nil {
			sets[lib] = make(map[string]bool)
		}
		matches, _ := expandGlob(absPattern(rootPath, entry.File))
		for _, match := range matches {
			if isVHDLFile(match) {
				sets[lib][match] = true
			}
		}
	}

	result := make([]ResolvedLibrary, 0, len(sets))
	for libName, fileSet := range sets {
		resolved := ResolvedLibrary{
			Name:         libName,
			IsThirdParty: thirdParty[libName],
		}
		for f := range fileSet {
			resolved.Files = append(resolved.Files, f)
		}
		sort.Strings(resolved.Files)
		result = append(result, resolved)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

func absPattern(rootPath, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(rootPath, pattern)
}

func isVHDLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".vhd" || ext == ".vhdl"
}

func isVHDLEntry(entry FileEntry) bool {
	return entry.Language == "" || strings.EqualFold(entry.Language, "vhdl")
}

func entryLibrary(entry FileEntry) string {
	if entry.Library == "" {
		return "work"
	}
	return entry.Library
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	// Check if pattern contains **
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}

	// Simple glob
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	// Split pattern at **
	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := parts[1]
	if strings.HasPrefix(suffix, string(filepath.Separator)) {
		suffix = suffix[1:]
	}

	// Walk the directory tree
	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		if info.IsDir() {
			return nil
		}

		// Check if file matches the suffix pattern
		if suffix == "" {
			results = append(results, path)
			return nil
		}

		// Build the pattern for this specific path
		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		// Try to match the suffix pattern against the relative path
		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}

		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	// Handle patterns like "/*.vhd" or "*.vhd"
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// If pattern has no directory component, match against filename
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	// For patterns with directory components, try matching
	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Also try matching just the suffix
	if len(path) > len(pattern) {
		suffix := path[len(path)-len(pattern):]
		matched, _ = filepath.Match(pattern, suffix)
		return matched
	}

	return false
}

// GetAllFiles returns all VHDL files from all libraries (flattened, sorted)
func (c *Config) GetAllFiles(rootPath string) ([]string, error) {
	libs, err := c.ResolveLibraries(rootPath)
	if err != nil {
		return nil, err
	}

	fileSet := make(map[string]bool)
	for _, lib := range libs {
		for _, f := range lib.Files {
			fileSet[f] = true
		}
	}

	var result []string
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)

	return result, nil
}

// FileLibraryInfo contains library information for a specific file
type FileLibraryInfo struct {
	LibraryName  string
	IsThirdParty bool
}

// GetFileLibrary returns the library information for a file. Explicit file
// entries take precedence over library globs.
func (c *Config) GetFileLibrary(filePath string, rootPath string) FileLibraryInfo {
	absPath, _ := filepath.Abs(filePath)

	for _, entry := range c.Files {
		if entry.File == "" || !isVHDLEntry(entry) {
			continue
		}
		matches, _ := expandGlob(absPattern(rootPath, entry.File))
		for _, m := range matches {
			if absM, _ := filepath.Abs(m); absM == absPath {
				return FileLibraryInfo{
					LibraryName:  entryLibrary(entry),
					IsThirdParty: entry.IsThirdParty || c.Libraries[entryLibrary(entry)].IsThirdParty,
				}
			}
		}
	}

	libs, err := c.ResolveLibraries(rootPath)
	if err != nil {
		return FileLibraryInfo{LibraryName: "work", IsThirdParty: false}
	}

	for _, lib := range libs {
		for _, f := range lib.Files {
			absF, _ := filepath.Abs(f)
			if absPath == absF {
				return FileLibraryInfo{
					LibraryName:  lib.Name,
					IsThirdParty: lib.IsThirdParty,
				}
			}
		}
	}

	// Default to work library
	return FileLibraryInfo{LibraryName: "work", IsThirdParty: false}
}
