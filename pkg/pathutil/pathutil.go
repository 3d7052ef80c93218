// Package pathutil provides slash-path helpers and an upward directory search.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipyard-ci/stagebucket/errors"
)

// Extension returns the substring after the last '.' of the path's base name.
// A base name without a dot is returned whole rather than treated as an error,
// so Extension("a/b/file") == "file".
func Extension(path string) string {
	base := Name(path)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}

// Name returns the part of path after the last '/'.
func Name(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns the part of path before the last '/'. A path with no '/'
// is returned unchanged.
func Dir(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}

// FindAncestorDir walks upward from startDir toward the filesystem root and
// returns the first directory that either is itself named marker or directly
// contains an entry named marker. It is useful for locating a repository or
// project root from a nested working directory.
//
// Returns an error wrapping ErrNotFound when the root is reached without
// a match.
func FindAncestorDir(marker, startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		if filepath.Base(dir) == marker {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.NewError("find-ancestor",
				fmt.Errorf("%w: no directory or marker named %q above %s",
					errors.ErrNotFound, marker, startDir))
		}
		dir = parent
	}
}
