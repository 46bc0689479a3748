// Package terminus is the package recipe of terminus_cmake, the collection
// of CMake functions and macros shared by Terminus CMake projects.
package terminus

import (
	"github.com/terminus-geospatial/tcmake/pkgs/buildsys/cmake"
	"github.com/terminus-geospatial/tcmake/recipe"
)

// Toolchain variable names handed to the CMake build.
const (
	VarPkgName      = "CONAN_PKG_NAME"
	VarPkgVersion   = "CONAN_PKG_VERSION"
	VarPkgDesc      = "CONAN_PKG_DESCRIPTION"
	VarPkgURL       = "CONAN_PKG_URL"
	VarEnableTests  = "TERMINUS_CMAKE_ENABLE_TESTS"
	OptionWithTests = "with_tests"
)

// CMakeRequirement is the exact build-configuration tool release the
// package is built with.
const CMakeRequirement = "cmake/4.1.2"

// MacroDir is the package directory holding the CMake macros.
const MacroDir = "cmake"

// Recipe builds and packages terminus_cmake.
type Recipe struct{}

var _ recipe.Recipe = Recipe{}

// New returns the terminus_cmake recipe.
func New() Recipe {
	return Recipe{}
}

func (Recipe) Metadata() recipe.Metadata {
	return recipe.Metadata{
		Name:        "terminus_cmake",
		Version:     "1.0.9",
		License:     "Terminus Proprietary",
		Author:      "Marvin Smith <marvin_smith1@me.com>",
		URL:         "https://github.com/Terminus-Geospatial/terminus_cmake",
		Description: "Collection of CMake functions and macros for use in Terminus CMake Projects",
		Topics:      []string{"terminus", "cmake", "build"},
		ExportsSources: []string{
			"CMakeLists.txt",
			"cmake/*",
			"cmake/**",
			"test/*",
			"test/**",
		},
		Options: map[string][]string{
			OptionWithTests: {recipe.True, recipe.False},
		},
		DefaultOptions: map[string]string{
			OptionWithTests: recipe.False,
		},
		Settings: []string{"os", "compiler", "build_type", "arch"},
	}
}

func (Recipe) Layout(ctx *recipe.Context) error {
	recipe.CMakeLayout(ctx)
	return nil
}

func (Recipe) BuildRequirements(ctx *recipe.Context) error {
	return ctx.Requires().BuildRequire(CMakeRequirement)
}

// EnableTests maps the with_tests option to the CMake switch value.
func EnableTests(opts recipe.OptionValues) string {
	if opts.Bool(OptionWithTests) {
		return "ON"
	}
	return "OFF"
}

// Variables returns the toolchain variables for ctx. Metadata values are
// passed through verbatim.
func Variables(ctx *recipe.Context) map[string]string {
	meta := ctx.Metadata()
	return map[string]string{
		VarPkgName:     meta.Name,
		VarPkgVersion:  meta.Version,
		VarPkgDesc:     meta.Description,
		VarPkgURL:      meta.URL,
		VarEnableTests: EnableTests(ctx.Options()),
	}
}

func (Recipe) Generate(ctx *recipe.Context) error {
	vars := Variables(ctx)

	tc := cmake.NewToolchain(ctx)
	for k, v := range vars {
		tc.Variables[k] = v
	}
	if err := tc.Generate(); err != nil {
		return err
	}

	deps := cmake.NewDeps(ctx)
	for k, v := range vars {
		deps.Variables[k] = v
	}
	return deps.Generate()
}

func configure(ctx *recipe.Context) (*cmake.CMake, error) {
	c := cmake.New(ctx)
	c.Toolchain(cmake.NewToolchain(ctx).Path())
	if err := c.Configure(); err != nil {
		return nil, err
	}
	return c, nil
}

func (Recipe) Build(ctx *recipe.Context) error {
	c, err := configure(ctx)
	if err != nil {
		return err
	}
	if err := c.Build(); err != nil {
		return err
	}
	if ctx.Options().Bool(OptionWithTests) {
		return c.Test()
	}
	return nil
}

func (Recipe) Package(ctx *recipe.Context) error {
	c, err := configure(ctx)
	if err != nil {
		return err
	}
	return c.Install()
}

func (Recipe) PackageInfo(ctx *recipe.Context) error {
	ctx.CppInfo().BuildDirs = []string{MacroDir}
	return nil
}

// PackageID clears the identity: the package holds only CMake text files,
// so one package serves every os, compiler, build type and arch.
func (Recipe) PackageID(ctx *recipe.Context) error {
	ctx.Info().Clear()
	return nil
}
