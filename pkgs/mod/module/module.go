// Package module defines the module.Version type along with support code.
package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidRef is returned when a requirement reference is malformed.
var ErrInvalidRef = errors.New("invalid requirement reference")

// A Version (for clients, a module.Version) represents a specific version
// of a package identified by its path.
type Version struct {
	Path    string // Package name, e.g. "cmake"
	Version string // Version string (e.g., "4.1.2")
}

// String returns the reference form "path/version".
func (v Version) String() string {
	return v.Path + "/" + v.Version
}

// ParseRef parses a reference in the form "name/version", e.g. "cmake/4.1.2".
func ParseRef(ref string) (Version, error) {
	path, ver, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok || path == "" || ver == "" || strings.Contains(ver, "/") {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return Version{Path: path, Version: ver}, nil
}

// CheckPinned reports an error unless v names one exact semantic version.
// Ranges, wildcards and partial versions like "4.1" are rejected.
func (v Version) CheckPinned() error {
	if strings.ContainsAny(v.Version, "[]<>=~^*, ") {
		return fmt.Errorf("%w: %s is not an exact version", ErrInvalidRef, v)
	}
	sv := Semver(v.Version)
	if !semver.IsValid(sv) || semver.Canonical(sv) != sv {
		return fmt.Errorf("%w: %s is not an exact version", ErrInvalidRef, v)
	}
	return nil
}

// Semver returns ver with the "v" prefix semver expects.
func Semver(ver string) string {
	if strings.HasPrefix(ver, "v") {
		return ver
	}
	return "v" + ver
}

// EscapePath returns the escaped form of the given module path as a valid
// file system path. It fails if the module path is invalid.
func EscapePath(path string) (escaped string, err error) {
	return filepath.Localize(path)
}
