// Package glob expands recursive glob patterns against the local filesystem.
//
// The expansion is side-effect free: behavior that shells control through
// global options (nullglob, globstar, dotglob) is passed in as explicit
// flags instead. A pattern that matches nothing yields an empty slice,
// never the literal pattern.
package glob

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Flags controls pattern expansion.
type Flags struct {
	// IncludeHidden matches entries whose name starts with a dot.
	IncludeHidden bool

	// FilesOnly drops directories from the result set.
	FilesOnly bool
}

// Expand resolves patterns relative to root and returns the union of all
// matches, sorted and deduplicated, as paths relative to root. Patterns use
// doublestar syntax, so "**/*.js" recurses.
func Expand(root string, patterns []string, flags Flags) ([]string, error) {
	seen := make(map[string]struct{})

	fsys := os.DirFS(root)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if !flags.IncludeHidden && hasHiddenComponent(match) {
				continue
			}
			if flags.FilesOnly {
				info, err := fs.Stat(fsys, match)
				if err != nil {
					return nil, fmt.Errorf("stat match %q: %w", match, err)
				}
				if info.IsDir() {
					continue
				}
			}
			seen[match] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for match := range seen {
		result = append(result, match)
	}
	sort.Strings(result)
	return result, nil
}

// Match reports whether a slash-separated path matches the doublestar pattern.
func Match(pattern, path string) (bool, error) {
	matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
	if err != nil {
		return false, fmt.Errorf("match pattern %q: %w", pattern, err)
	}
	return matched, nil
}

func hasHiddenComponent(path string) bool {
	for path != "" {
		base := filepath.Base(path)
		if len(base) > 1 && base[0] == '.' {
			return true
		}
		parent := filepath.Dir(path)
		if parent == path || parent == "." {
			break
		}
		path = parent
	}
	return false
}
