package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
	"github.com/terminus-geospatial/tcmake/recipe"
)

// Workspace directory layout:
//
//	workspaceDir/
//	  <name>/                      # package-level dir (cacheDir)
//	    .cache.json                # build cache: maps "version-packageID" to buildEntry
//	    .lock
//	    <version>/
//	      export/                  # exported sources, build trees below
//	      package/<packageID>/     # installed package
//	        manifest.yaml
const cacheFile = ".cache.json"

// buildEntry contains metadata about a single successful build.
type buildEntry struct {
	PackageID  string    `json:"package_id"`
	PackageDir string    `json:"package_dir"`
	BuildDirs  []string  `json:"builddirs"`
	BuildTime  time.Time `json:"build_time"`
}

// buildCache maps "version-packageID" keys to their build entries.
type buildCache struct {
	Cache map[string]*buildEntry `json:"cache"`
}

func cacheKey(version, id string) string {
	return version + "-" + id
}

func (c *buildCache) get(version, id string) (*buildEntry, bool) {
	entry, ok := c.Cache[cacheKey(version, id)]
	return entry, ok
}

func (c *buildCache) set(version, id string, entry *buildEntry) {
	if c.Cache == nil {
		c.Cache = make(map[string]*buildEntry)
	}
	c.Cache[cacheKey(version, id)] = entry
}

// cacheDir returns the package-level directory: workspaceDir/<name>.
func (b *Builder) cacheDir(name string) (string, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(b.opts.WorkspaceDir, escaped), nil
}

// versionDir returns workspaceDir/<name>/<version>.
func (b *Builder) versionDir(meta recipe.Metadata) (string, error) {
	dir, err := b.cacheDir(meta.Name)
	if err != nil {
		return "", err
	}
	version, err := module.EscapePath(meta.Version)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, version), nil
}

// packageDir returns workspaceDir/<name>/<version>/package/<id>.
func (b *Builder) packageDir(meta recipe.Metadata, id string) (string, error) {
	dir, err := b.versionDir(meta)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "package", id), nil
}

// loadCache reads the cache file for a package from the workspace directory.
func (b *Builder) loadCache(name string) (*buildCache, error) {
	dir, err := b.cacheDir(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, err
	}
	var cache buildCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, err
	}
	return &cache, nil
}

// saveCache writes the cache file for a package to the workspace directory.
func (b *Builder) saveCache(name string, cache *buildCache) error {
	dir, err := b.cacheDir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cacheFile), data, 0o644)
}
