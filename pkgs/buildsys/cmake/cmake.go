// Package cmake wraps the cmake configure/build/install/test workflow and
// generates the descriptor files a CMake build consumes.
package cmake

import (
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/terminus-geospatial/tcmake/pkgs/buildsys"
	"github.com/terminus-geospatial/tcmake/recipe"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake wraps common CMake build steps with chainable configuration.
type CMake struct {
	SourceDir  string
	buildDir   string
	installDir string
	generator  string
	buildType  string
	toolchain  string
	Defines    map[string]defineValue
	env        map[string]string
	runner     recipe.Runner
}

var _ buildsys.BuildSystem = (*CMake)(nil)

// New creates a CMake helper for the folders and build type of ctx.
// Commands run through ctx's runner. A nil ctx runs commands directly.
func New(ctx *recipe.Context) *CMake {
	c := &CMake{
		Defines: map[string]defineValue{},
		env:     map[string]string{},
	}
	c.runner = execRunner{env: c.env}
	if ctx != nil {
		c.SourceDir = ctx.Folders.Source
		c.buildDir = ctx.Folders.Build
		c.installDir = ctx.Folders.Package
		c.buildType = ctx.Settings().BuildType()
		c.runner = ctx.Runner()
	}
	return c
}

func (c *CMake) Source(dir string) {
	c.SourceDir = dir
}

func (c *CMake) InstallDir(dir string) {
	c.installDir = dir
}

// BuildDir overrides the build directory.
func (c *CMake) BuildDir(dir string) *CMake {
	c.buildDir = dir
	return c
}

func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

func (c *CMake) Toolchain(path string) *CMake {
	c.toolchain = path
	return c
}

func (c *CMake) Define(key, value string) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	c.Defines[key] = defineValue{value: value, typeName: "STRING"}
	return c
}

func (c *CMake) DefineBool(key string, value bool) *CMake {
	if c.Defines == nil {
		c.Defines = map[string]defineValue{}
	}
	if value {
		c.Defines[key] = defineValue{value: "ON", typeName: "BOOL"}
		return c
	}
	c.Defines[key] = defineValue{value: "OFF", typeName: "BOOL"}
	return c
}

// Env sets an environment variable for the build. The variable is set in
// the process environment, so it is visible to any Runner and stays set
// for later hooks. The context-free runner also passes it explicitly.
func (c *CMake) Env(key, value string) {
	if c.env == nil {
		c.env = map[string]string{}
	}
	c.env[key] = value
	_ = os.Setenv(key, value)
}

func (c *CMake) dir() string {
	if c.buildDir == "" {
		return "build"
	}
	return c.buildDir
}

// ConfigureArgs returns the arguments Configure passes to cmake.
func (c *CMake) ConfigureArgs(args ...string) []string {
	cmakeArgs := []string{"-S", c.SourceDir, "-B", c.dir()}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.installDir != "" {
		c.Define("CMAKE_INSTALL_PREFIX", c.installDir)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	return append(cmakeArgs, args...)
}

func (c *CMake) Configure(args ...string) error {
	if err := os.MkdirAll(c.dir(), 0755); err != nil {
		return err
	}
	return c.runner.Run("cmake", c.ConfigureArgs(args...)...)
}

func (c *CMake) Build(args ...string) error {
	cmdArgs := []string{"--build", c.dir()}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "--config", c.buildType)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.runner.Run("cmake", cmdArgs...)
}

func (c *CMake) Install(args ...string) error {
	cmdArgs := []string{"--install", c.dir()}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "--config", c.buildType)
	}
	if c.installDir != "" {
		cmdArgs = append(cmdArgs, "--prefix", c.installDir)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.runner.Run("cmake", cmdArgs...)
}

// Test runs ctest against the build directory.
func (c *CMake) Test(args ...string) error {
	cmdArgs := []string{"--test-dir", c.dir(), "--output-on-failure"}
	if c.buildType != "" {
		cmdArgs = append(cmdArgs, "-C", c.buildType)
	}
	cmdArgs = append(cmdArgs, args...)
	return c.runner.Run("ctest", cmdArgs...)
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (c *CMake) OutputDir() string {
	if c.installDir != "" {
		return c.installDir
	}
	return c.buildDir
}

func (c *CMake) definesArgs() []string {
	if len(c.Defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Defines))
	for k := range c.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		def := c.Defines[k]
		if def.typeName != "" {
			args = append(args, "-D"+k+":"+def.typeName+"="+def.value)
			continue
		}
		args = append(args, "-D"+k+"="+def.value)
	}
	return args
}

// execRunner runs commands directly with the process stdio.
type execRunner struct {
	env map[string]string
}

func (r execRunner) Run(bin string, args ...string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(r.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), r.env)
	}
	return cmd.Run()
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
