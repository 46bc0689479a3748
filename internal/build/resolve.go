package build

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"

	"golang.org/x/mod/semver"

	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
)

// ErrToolVersion is returned when a build requirement is found on the host
// at a version other than the pinned one.
var ErrToolVersion = errors.New("tool version mismatch")

// ToolResolver locates a build requirement on the host.
type ToolResolver interface {
	// Resolve returns the path of the tool satisfying req.
	Resolve(ctx context.Context, req module.Version) (string, error)
}

// PathResolver finds tools on PATH and checks the version they report for
// --version.
type PathResolver struct{}

var versionRE = regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`)

func (PathResolver) Resolve(ctx context.Context, req module.Version) (string, error) {
	path, err := exec.LookPath(req.Path)
	if err != nil {
		return "", fmt.Errorf("build requirement %s: %w", req, err)
	}
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("build requirement %s: %s --version: %w", req, path, err)
	}
	found, err := ParseToolVersion(string(out))
	if err != nil {
		return "", fmt.Errorf("build requirement %s: %w", req, err)
	}
	if semver.Compare(module.Semver(found), module.Semver(req.Version)) != 0 {
		return "", fmt.Errorf("%w: %s requires %s, found %s at %s", ErrToolVersion, req.Path, req.Version, found, path)
	}
	return path, nil
}

// ParseToolVersion returns the first semantic version in the output of a
// tool's --version.
func ParseToolVersion(out string) (string, error) {
	v := versionRE.FindString(out)
	if v == "" || !semver.IsValid(module.Semver(v)) {
		return "", fmt.Errorf("no version in %q", out)
	}
	return v, nil
}
