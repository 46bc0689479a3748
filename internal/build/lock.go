package build

import (
	"os"
	"path/filepath"

	"github.com/terminus-geospatial/tcmake/recipe"
)

// lockPackage takes the exclusive per-package lock serializing tcmake
// processes that work on the same package.
func (b *Builder) lockPackage(meta recipe.Metadata) (unlock func(), err error) {
	dir, err := b.cacheDir(meta.Name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return lockFile(filepath.Join(dir, ".lock"))
}

// lockFile blocks until it holds an exclusive advisory lock on path.
func lockFile(path string) (unlock func(), err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lock(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		unlockFile(f)
		f.Close()
	}, nil
}
