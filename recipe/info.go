package recipe

import (
	"fmt"
	"slices"

	"github.com/mitchellh/hashstructure/v2"
)

// CppInfo describes what consumers of a package see.
type CppInfo struct {
	// BuildDirs are package-relative directories added to the consumer's
	// build-system search path (CMAKE_MODULE_PATH and friends).
	BuildDirs []string `yaml:"builddirs"`
}

// Clone returns a copy of c.
func (c CppInfo) Clone() CppInfo {
	return CppInfo{BuildDirs: slices.Clone(c.BuildDirs)}
}

// Info holds the settings and options that distinguish otherwise identical
// package builds. Its ID is the package cache key.
type Info struct {
	Settings Settings     `yaml:"settings,omitempty"`
	Options  OptionValues `yaml:"options,omitempty"`
}

// Clear drops every setting and option from the identity, making the
// package independent of the build environment.
func (i *Info) Clear() {
	i.Settings = nil
	i.Options = nil
}

// ID returns the package ID: a stable hash of the identity. Map ordering
// does not affect the result.
func (i *Info) ID() (string, error) {
	id := struct {
		Settings map[string]string
		Options  map[string]string
	}{
		Settings: emptyIfNil(i.Settings),
		Options:  emptyIfNil(i.Options),
	}
	h, err := hashstructure.Hash(id, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hash package info: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

func emptyIfNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
