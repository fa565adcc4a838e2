// Package shard splits feature files across CI workers and runs one worker's slice.
package shard

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrInvalidShard is returned for a shard index outside 1..total
var ErrInvalidShard = errors.New("invalid shard")

// FeatureExt is the extension of the files that are sharded
const FeatureExt = ".feature"

// Partition returns the contiguous slice of files owned by shard index (1-based)
// out of total. Every shard gets ceil(n/total) files except the tail, which may
// get fewer or none.
func Partition(files []string, index, total int) ([]string, error) {
	if total < 1 || index < 1 || index > total {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidShard, index, total)
	}

	n := len(files)
	per := (n + total - 1) / total
	start := (index - 1) * per
	if start > n {
		start = n
	}
	end := start + per
	if end > n {
		end = n
	}
	return files[start:end], nil
}

// Discover lists the feature file names in dir, sorted
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read features directory: %w", err)
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FeatureExt) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
