package lister

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"pattern-catalog/core/pattern"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FSLister lists files of a billy filesystem.
type FSLister struct {
	fs billy.Filesystem
}

// NewFSLister creates a lister over filesystem.
func NewFSLister(filesystem billy.Filesystem) *FSLister {
	return &FSLister{fs: filesystem}
}

// ListPaths walks the deepest literal directory of glob and keeps the files
// matching it. A missing root yields an empty listing.
func (l *FSLister) ListPaths(ctx context.Context, glob string) ([]string, error) {
	re, err := pattern.CompileGlob(glob)
	if err != nil {
		return nil, err
	}

	root := pattern.GlobRoot(glob)

	var paths []string
	err = util.Walk(l.fs, root, func(path string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root && errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return translateFS(err)
		}
		if info.IsDir() {
			return nil
		}
		rel := filepath.ToSlash(path)
		if re.MatchString(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether path is present. Directories count as present.
func (l *FSLister) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := l.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", path, translateFS(err))
	}
}

func translateFS(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return err
}

// LocalFactory builds FSListers rooted at the catalog directory on disk.
func LocalFactory(ctx context.Context, loc pattern.Location) (Lister, error) {
	root := loc.Root
	if root == "" {
		root = "."
	}
	return NewFSLister(osfs.New(root)), nil
}

// FSFactory returns a Factory serving a shared filesystem, chrooted to the
// location root when one is given. Used for in-memory catalogs, where
// "memory://data/{id}.csv" lists "{id}.csv" under "data".
func FSFactory(filesystem billy.Filesystem) Factory {
	return func(ctx context.Context, loc pattern.Location) (Lister, error) {
		if loc.Root == "" || loc.Root == "." {
			return NewFSLister(filesystem), nil
		}
		chrooted, err := filesystem.Chroot(loc.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to chroot to %s: %w", loc.Root, err)
		}
		return NewFSLister(chrooted), nil
	}
}
