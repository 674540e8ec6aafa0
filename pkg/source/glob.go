package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// MessageFileExt is the extension picked up when a directory is given.
const MessageFileExt = ".txt"

// ExpandGlobs expands file paths, directories and glob patterns into a sorted,
// deduplicated list of message files. A directory contributes its *.txt files.
// Patterns matching nothing are returned as-is so that opening them later
// reports a useful file-not-found error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				add(match)
				continue
			}
			inDir, err := filepath.Glob(filepath.Join(match, "*"+MessageFileExt))
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", match, err)
			}
			for _, f := range inDir {
				add(f)
			}
		}
	}

	slices.Sort(result)
	return result, nil
}
