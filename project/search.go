package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindUpward searches for a file matching one of patterns, starting in the
// directory that contains start and climbing to the filesystem root. At every
// level the patterns are tried in order, so earlier patterns win over later
// ones in the same directory but never over a nearer directory. Matches are
// taken in lexical order. It returns ErrNotFound when the root is passed.
func FindUpward(start string, patterns ...string) (string, error) {
	if len(patterns) == 0 {
		return "", &ArgumentError{Name: "patterns"}
	}
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return "", fmt.Errorf("pattern %q: %w", p, err)
		}
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	dir := filepath.Dir(abs)
	for {
		if match := matchInDir(dir, patterns); match != "" {
			return match, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %v above %s", ErrNotFound, patterns, start)
		}
		dir = parent
	}
}

func matchInDir(dir string, patterns []string) string {
	// An unreadable directory simply has no matches; the search keeps climbing.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, pattern := range patterns {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(pattern, e.Name()); ok {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	return ""
}
