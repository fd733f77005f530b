package patch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// cachedFile remembers a local file's hash at a given modification time, so
// unchanged files are not re-hashed on every check.
type cachedFile struct {
	Hash         string    `json:"hash"`
	LastModified time.Time `json:"last_modified"`
}

type hashCache map[string]cachedFile

// loadCache reads the hash cache from disk. Any failure degrades to an empty
// cache; the check then simply re-hashes everything.
func loadCache(path string) hashCache {
	data, err := os.ReadFile(path)
	if err != nil {
		return hashCache{}
	}
	cache := hashCache{}
	if err := json.Unmarshal(data, &cache); err != nil {
		return hashCache{}
	}
	return cache
}

// saveCache persists the hash cache beside the game files.
func saveCache(path string, cache hashCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hash cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write hash cache: %w", err)
	}
	return nil
}
