// Package staging assembles the exact local file tree that will be mirrored
// to object storage.
package staging

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/shipyard-ci/stagebucket/errors"
	"github.com/shipyard-ci/stagebucket/pkg/pathutil"
)

// DefaultDirName is the well-known staging directory name, resolved relative
// to the working directory. A single execution owns it exclusively; callers
// running concurrent syncs must use distinct roots.
const DefaultDirName = ".stagebucket-sync"

// Area is an ephemeral local directory populated from input files.
type Area struct {
	root string
}

// New returns an Area rooted at dir. Nothing is touched until Reset.
func New(dir string) *Area {
	return &Area{root: dir}
}

// Root returns the staging directory path.
func (a *Area) Root() string {
	return a.root
}

// Reset removes any previous staging tree and recreates the directory empty.
// It must be called before Add so that no residue from a prior run leaks
// into the upload set.
func (a *Area) Reset() error {
	if err := os.RemoveAll(a.root); err != nil {
		return errors.Staging(a.root, fmt.Errorf("remove staging dir: %w", err))
	}
	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return errors.Staging(a.root, fmt.Errorf("create staging dir: %w", err))
	}
	return nil
}

// Add stages one input file. Files with a "zip" extension (case-sensitive)
// are expanded in place, preserving the archive's internal sub-paths; later
// archives overwrite earlier entries on collision, which callers use to
// layer archives. Anything else is copied flat into the staging root, so
// plain files sharing a basename overwrite each other silently.
func (a *Area) Add(path string) error {
	if path == "" {
		return nil
	}
	if pathutil.Extension(path) == "zip" {
		return a.extractArchive(path)
	}
	return a.copyFlat(path)
}

// Files walks the staging tree and returns all regular files as paths
// relative to the root, in lexical order.
func (a *Area) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(a.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Staging(a.root, fmt.Errorf("walk staging dir: %w", err))
	}
	return files, nil
}

func (a *Area) copyFlat(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.Staging(path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Staging(path, err)
	}

	dest := filepath.Join(a.root, pathutil.Name(path))
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Staging(path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Staging(path, fmt.Errorf("copy to staging: %w", err))
	}

	log.Debugf("staged %s as %s", path, dest)
	return nil
}

func (a *Area) extractArchive(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return errors.Staging(path, fmt.Errorf("open archive: %w", err))
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if err := a.extractEntry(path, entry); err != nil {
			return err
		}
	}

	log.Debugf("extracted %s into %s (%d entries)", path, a.root, len(reader.File))
	return nil
}

func (a *Area) extractEntry(archivePath string, entry *zip.File) error {
	dest, err := a.securePath(entry.Name)
	if err != nil {
		return errors.Staging(archivePath, err)
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return errors.Staging(archivePath, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Staging(archivePath, err)
	}

	src, err := entry.Open()
	if err != nil {
		return errors.Staging(archivePath, fmt.Errorf("open archive entry %s: %w", entry.Name, err))
	}
	defer src.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Staging(archivePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Staging(archivePath, fmt.Errorf("extract archive entry %s: %w", entry.Name, err))
	}
	return nil
}

// securePath resolves an archive entry name under the staging root and
// rejects entries that would escape it.
func (a *Area) securePath(name string) (string, error) {
	dest := filepath.Join(a.root, filepath.FromSlash(name))
	if dest != a.root && !strings.HasPrefix(dest, a.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes staging dir", name)
	}
	return dest, nil
}
