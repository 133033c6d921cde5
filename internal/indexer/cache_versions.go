package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/config"
	"github.com/robert-at-pretension-io/vhdl-sema/internal/policy"
)

// analyzerVersion changes whenever the parser or the checks change what they
// report, invalidating every stored result.
const analyzerVersion = "vhdl-sema/1"

func resolveCacheDir(rootPath string, cfg *config.Config) string {
	baseDir := rootPath
	if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(rootPath)
	}
	cacheDir := cfg.Analysis.Cache.Dir
	if cacheDir == "" {
		cacheDir = ".vhdl_lint_cache"
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(baseDir, cacheDir)
	}
	return cacheDir
}

// openCache hashes every file and derives the cache key from the analyzer
// version, the configuration and the policy in use.
func (idx *Indexer) openCache(rootPath string, files []string) (*resultCache, map[string]string, error) {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		h, err := hashFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f, err)
		}
		hashes[f] = h
	}

	key, err := idx.cacheKey()
	if err != nil {
		return nil, nil, err
	}
	return &resultCache{dir: resolveCacheDir(rootPath, idx.Config), key: key}, hashes, nil
}

func (idx *Indexer) cacheKey() (string, error) {
	policyVersion, err := policy.Fingerprint(idx.PolicyDir)
	if err != nil {
		return "", fmt.Errorf("policy fingerprint: %w", err)
	}
	payload := struct {
		Analyzer      string          `json:"analyzer"`
		Config        *config.Config  `json:"config"`
		ThirdParty    map[string]bool `json:"third_party"`
		PolicyVersion string          `json:"policy_version"`
	}{
		Analyzer:      analyzerVersion,
		Config:        idx.Config,
		ThirdParty:    idx.ThirdPartyFiles,
		PolicyVersion: policyVersion,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
