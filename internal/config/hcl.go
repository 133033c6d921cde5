package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfig is the HCL form of Config:
//
//	standard = "2008"
//
//	library "work" {
//	  files   = ["rtl/**/*.vhd"]
//	  exclude = ["rtl/old/*.vhd"]
//	}
//
//	file "sim/tb_top.vhd" {
//	  library = "sim"
//	}
//
//	lint {
//	  rules           = { "missing-reset" = "warning" }
//	  ignore_patterns = ["*_tb.vhd"]
//	}
//
//	analysis {
//	  max_parallel_files = 4
//	  cache {
//	    enabled = false
//	  }
//	}
type hclConfig struct {
	Standard  string       `hcl:"standard,optional"`
	Libraries []hclLibrary `hcl:"library,block"`
	Files     []hclFile    `hcl:"file,block"`
	Lint      *hclLint     `hcl:"lint,block"`
	Analysis  *hclAnalysis `hcl:"analysis,block"`
}

type hclLibrary struct {
	Name       string   `hcl:"name,label"`
	Files      []string `hcl:"files"`
	Exclude    []string `hcl:"exclude,optional"`
	ThirdParty bool     `hcl:"third_party,optional"`
}

type hclFile struct {
	Path       string `hcl:"path,label"`
	Library    string `hcl:"library,optional"`
	Language   string `hcl:"language,optional"`
	ThirdParty bool   `hcl:"third_party,optional"`
}

type hclLint struct {
	Rules            map[string]string `hcl:"rules,optional"`
	IgnorePatterns   []string          `hcl:"ignore_patterns,optional"`
	IgnoreRegions    *bool             `hcl:"ignore_regions,optional"`
	ClockEdgePattern string            `hcl:"clock_edge_pattern,optional"`
	ResetPattern     string            `hcl:"reset_pattern,optional"`
}

type hclAnalysis struct {
	MaxParallelFiles int       `hcl:"max_parallel_files,optional"`
	FollowLibraryUse *bool     `hcl:"follow_library_use,optional"`
	Cache            *hclCache `hcl:"cache,block"`
}

type hclCache struct {
	Enabled *bool  `hcl:"enabled,optional"`
	Dir     string `hcl:"dir,optional"`
}

// decodeHCL parses an HCL configuration. Options left out keep the values
// DefaultConfig gives them.
func decodeHCL(path string, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}

	cfg := DefaultConfig()
	if raw.Standard != "" {
		cfg.Standard = raw.Standard
	}
	if len(raw.Libraries) > 0 || len(raw.Files) > 0 {
		cfg.Libraries = map[string]LibraryConfig{}
	}
	for _, lib := range raw.Libraries {
		if _, dup := cfg.Libraries[lib.Name]; dup {
			return nil, fmt.Errorf("library %q declared twice in %s", lib.Name, path)
		}
		cfg.Libraries[lib.Name] = LibraryConfig{
			Files:        lib.Files,
			Exclude:      lib.Exclude,
			IsThirdParty: lib.ThirdParty,
		}
	}
	for _, f := range raw.Files {
		cfg.Files = append(cfg.Files, FileEntry{
			File:         f.Path,
			Library:      f.Library,
			Language:     f.Language,
			IsThirdParty: f.ThirdParty,
		})
	}

	if l := raw.Lint; l != nil {
		if l.Rules != nil {
			cfg.Lint.Rules = l.Rules
		}
		if l.IgnorePatterns != nil {
			cfg.Lint.IgnorePatterns = l.IgnorePatterns
		}
		if l.IgnoreRegions != nil {
			cfg.Lint.IgnoreRegions = *l.IgnoreRegions
		}
		if l.ClockEdgePattern != "" {
			cfg.Lint.ClockEdgePattern = l.ClockEdgePattern
		}
		if l.ResetPattern != "" {
			cfg.Lint.ResetPattern = l.ResetPattern
		}
	}

	if a := raw.Analysis; a != nil {
		cfg.Analysis.MaxParallelFiles = a.MaxParallelFiles
		if a.FollowLibraryUse != nil {
			cfg.Analysis.FollowLibraryUse = *a.FollowLibraryUse
		}
		if c := a.Cache; c != nil {
			if c.Enabled != nil {
				cfg.Analysis.Cache.Enabled = c.Enabled
			}
			if c.Dir != "" {
				cfg.Analysis.Cache.Dir = c.Dir
			}
		}
	}
	return cfg, nil
}
