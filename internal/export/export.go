// Package export resolves exports_sources patterns and copies the matching
// files out of a recipe source tree.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Resolve expands patterns relative to base and returns the matching
// regular files as sorted, slash-separated relative paths. "**" matches
// any number of directories. Patterns matching nothing are skipped.
func Resolve(base string, patterns []string) ([]string, error) {
	cfg := &expand.Config{
		Env:      expand.ListEnviron("PWD=" + base),
		ReadDir2: os.ReadDir,
		GlobStar: true,
		NullGlob: true,
	}
	parser := syntax.NewParser()

	seen := make(map[string]bool)
	var result []string
	for _, item := range patterns {
		var words []*syntax.Word
		err := parser.Words(strings.NewReader(filepath.ToSlash(item)), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("parse pattern %s: %w", item, err)
		}

		matches, err := expand.Fields(cfg, words...)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %s: %w", item, err)
		}
		for _, match := range matches {
			rel := filepath.ToSlash(filepath.Clean(match))
			if seen[rel] || !filepath.IsLocal(filepath.FromSlash(rel)) {
				continue
			}
			info, err := os.Stat(filepath.Join(base, filepath.FromSlash(rel)))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[rel] = true
			result = append(result, rel)
		}
	}
	slices.Sort(result)
	return result, nil
}

// Copy copies the files matching patterns from src into dst, preserving
// their relative paths. It returns the copied files.
func Copy(src, dst string, patterns []string) ([]string, error) {
	files, err := Resolve(src, patterns)
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		if err := copyFile(filepath.Join(src, rel), filepath.Join(dst, rel)); err != nil {
			return nil, fmt.Errorf("export %s: %w", rel, err)
		}
	}
	return files, nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
