package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// VCS defines the version control operations used to fetch recipe sources.
type VCS interface {
	// Sync ensures the local repo exists and is at the specified ref.
	// ref can be branch, tag, or commit hash.
	// If dir doesn't exist, it is created and initialized.
	// If dir exists, fetches updates and checks out the ref.
	Sync(ctx context.Context, remote, ref, dir string) error

	// Tags returns all tags from the remote repository.
	Tags(ctx context.Context, remote string) ([]string, error)

	// Latest returns the latest commit hash (HEAD) from the remote repository.
	// Returns error if no commits exist.
	Latest(ctx context.Context, remote string) (string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git string
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) ensureInit(ctx context.Context, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		return g.run(ctx, dir, "init", "--quiet")
	}
	return nil
}

func (g *gitVCS) Sync(ctx context.Context, remote, ref, dir string) error {
	if err := g.ensureInit(ctx, dir); err != nil {
		return err
	}
	if err := g.fetch(ctx, remote, dir, ref); err != nil {
		return err
	}
	return g.checkout(ctx, dir, "FETCH_HEAD")
}

func (g *gitVCS) fetch(ctx context.Context, remote, dir, ref string) error {
	args := []string{"fetch", "--quiet", "--depth", "1", remote, ref}
	if err := g.run(ctx, dir, args...); err != nil {
		return fmt.Errorf("fetch %s: %w", ref, err)
	}
	return nil
}

func (g *gitVCS) checkout(ctx context.Context, dir, ref string) error {
	if err := g.run(ctx, dir, "checkout", "--quiet", "--force", ref); err != nil {
		return fmt.Errorf("checkout %s: %w", ref, err)
	}
	return nil
}

// remoteRef is one line of git ls-remote output.
type remoteRef struct {
	hash string
	name string
}

// parseLsRemote splits "<hash>\t<ref>" lines.
func parseLsRemote(out string) []remoteRef {
	var refs []remoteRef
	for _, line := range strings.Split(out, "\n") {
		hash, name, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if ok && hash != "" {
			refs = append(refs, remoteRef{hash: hash, name: name})
		}
	}
	return refs
}

func (g *gitVCS) lsRemote(ctx context.Context, args ...string) ([]remoteRef, error) {
	out, err := g.output(ctx, "", append([]string{"ls-remote"}, args...)...)
	if err != nil {
		return nil, err
	}
	return parseLsRemote(out), nil
}

func (g *gitVCS) Tags(ctx context.Context, remote string) ([]string, error) {
	refs, err := g.lsRemote(ctx, "--tags", "--refs", remote)
	if err != nil {
		return nil, fmt.Errorf("list remote tags: %w", err)
	}
	var tags []string
	for _, ref := range refs {
		if tag, ok := strings.CutPrefix(ref.name, "refs/tags/"); ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (g *gitVCS) Latest(ctx context.Context, remote string) (string, error) {
	refs, err := g.lsRemote(ctx, remote, "HEAD")
	if err != nil {
		return "", fmt.Errorf("get remote HEAD: %w", err)
	}
	if len(refs) == 0 {
		return "", fmt.Errorf("no HEAD found in remote %s", remote)
	}
	return refs[0].hash, nil
}

// ResolveRef picks the ref to sync for a recipe version. An explicit ref
// wins. Otherwise the tag naming version (with or without a "v" prefix) is
// used, falling back to the remote HEAD when no such tag exists.
func ResolveRef(ctx context.Context, v VCS, remote, ref, version string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	if version != "" {
		tags, err := v.Tags(ctx, remote)
		if err != nil {
			return "", err
		}
		want := "v" + strings.TrimPrefix(version, "v")
		for _, tag := range tags {
			if tag == version || (semver.IsValid(tag) && semver.Compare(tag, want) == 0) {
				return tag, nil
			}
		}
	}
	return v.Latest(ctx, remote)
}

func (g *gitVCS) run(ctx context.Context, dir string, args ...string) error {
	_, err := g.output(ctx, dir, args...)
	return err
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.git, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %s", args[0], msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
