package indexer

import (
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/vhdl-sema/internal/config"
)

// ClearCache removes the stored result cache for the given root path.
// Returns the cache directory that was targeted.
func ClearCache(rootPath string, cfg *config.Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("clear cache: config is nil")
	}
	cacheDir := resolveCacheDir(rootPath, cfg)
	c := &resultCache{dir: cacheDir}
	if err := os.Remove(c.path()); err != nil && !os.IsNotExist(err) {
		return cacheDir, fmt.Errorf("remove result cache: %w", err)
	}
	return cacheDir, nil
}
