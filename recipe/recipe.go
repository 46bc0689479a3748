// Package recipe defines the package recipe model: immutable metadata,
// validated option and setting values, and the lifecycle hooks a host
// invokes to produce a package.
package recipe

import (
	"maps"
	"slices"
)

// -----------------------------------------------------------------------------

// Metadata describes a package. It is read once when a recipe is loaded
// and never mutated by the recipe itself.
type Metadata struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	License     string   `yaml:"license"`
	Author      string   `yaml:"author"`
	URL         string   `yaml:"url"`
	Description string   `yaml:"description"`
	Topics      []string `yaml:"topics"`

	// ExportsSources lists glob patterns, relative to the recipe root, of
	// the files bundled into the source package.
	ExportsSources []string `yaml:"exports_sources"`

	// Options maps an option name to its allowed values.
	Options map[string][]string `yaml:"options"`
	// DefaultOptions maps an option name to its default value.
	DefaultOptions map[string]string `yaml:"default_options"`

	// Settings names the host settings the package may depend on.
	Settings []string `yaml:"settings"`
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	m.Topics = slices.Clone(m.Topics)
	m.ExportsSources = slices.Clone(m.ExportsSources)
	m.Settings = slices.Clone(m.Settings)
	m.DefaultOptions = maps.Clone(m.DefaultOptions)
	if m.Options != nil {
		opts := make(map[string][]string, len(m.Options))
		for k, v := range m.Options {
			opts[k] = slices.Clone(v)
		}
		m.Options = opts
	}
	return m
}

// Ref returns the package reference "name/version".
func (m Metadata) Ref() string {
	return m.Name + "/" + m.Version
}

// -----------------------------------------------------------------------------

// Recipe is implemented by every package recipe. A host calls the hooks
// once per session in the fixed order:
//
//	Layout, BuildRequirements, Generate, Build, Package, PackageInfo, PackageID
//
// Hooks must not retain ctx beyond the call.
type Recipe interface {
	// Metadata returns the package identity, options and exported sources.
	Metadata() Metadata

	// Layout sets up the folder convention in ctx.Folders.
	Layout(ctx *Context) error

	// BuildRequirements declares tools needed at build time.
	BuildRequirements(ctx *Context) error

	// Generate writes the descriptor files consumed by the build.
	Generate(ctx *Context) error

	// Build configures and runs the build.
	Build(ctx *Context) error

	// Package installs build outputs into ctx.Folders.Package.
	Package(ctx *Context) error

	// PackageInfo describes what consumers of the package see.
	PackageInfo(ctx *Context) error

	// PackageID adjusts the settings and options that identify the package.
	PackageID(ctx *Context) error
}

// -----------------------------------------------------------------------------
