package terminus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terminus-geospatial/tcmake/pkgs/buildsys/cmake"
	"github.com/terminus-geospatial/tcmake/recipe"
)

type fakeRunner struct {
	calls []string
}

func (r *fakeRunner) Run(name string, args ...string) error {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return nil
}

func newContext(t *testing.T, settings, options map[string]string) *recipe.Context {
	t.Helper()
	r := New()
	meta := r.Metadata()
	s, err := meta.ResolveSettings(settings)
	if err != nil {
		t.Fatalf("ResolveSettings: %v", err)
	}
	o, err := meta.ResolveOptions(options)
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	ctx := recipe.NewContext(meta, s, o)
	ctx.Folders.Root = t.TempDir()
	ctx.Folders.Package = filepath.Join(t.TempDir(), "package")
	if err := r.Layout(ctx); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return ctx
}

func TestEnableTests(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{recipe.True, "ON"},
		{recipe.False, "OFF"},
		{"true", "ON"},
		{"0", "OFF"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ctx := newContext(t, nil, map[string]string{OptionWithTests: tt.value})
			if got := Variables(ctx)[VarEnableTests]; got != tt.want {
				t.Errorf("%s = %q, want %q", VarEnableTests, got, tt.want)
			}
		})
	}

	ctx := newContext(t, nil, nil)
	if got := Variables(ctx)[VarEnableTests]; got != "OFF" {
		t.Errorf("default %s = %q, want OFF", VarEnableTests, got)
	}
}

func TestVariablesMatchMetadata(t *testing.T) {
	ctx := newContext(t, nil, nil)
	meta := New().Metadata()
	vars := Variables(ctx)

	want := map[string]string{
		VarPkgName:    meta.Name,
		VarPkgVersion: meta.Version,
		VarPkgDesc:    meta.Description,
		VarPkgURL:     meta.URL,
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s = %q, want %q", k, vars[k], v)
		}
	}
	if len(vars) != 5 {
		t.Errorf("got %d variables, want 5: %v", len(vars), vars)
	}
}

func TestBuildRequirements(t *testing.T) {
	ctx := newContext(t, nil, nil)
	if err := New().BuildRequirements(ctx); err != nil {
		t.Fatalf("BuildRequirements: %v", err)
	}
	reqs := ctx.Requires().BuildRequires()
	if len(reqs) != 1 {
		t.Fatalf("got %d build requirements, want 1", len(reqs))
	}
	if reqs[0].Path != "cmake" || reqs[0].Version != "4.1.2" {
		t.Errorf("build requirement = %s, want cmake/4.1.2", reqs[0])
	}
}

func TestGenerate(t *testing.T) {
	ctx := newContext(t, nil, map[string]string{OptionWithTests: recipe.True})
	r := New()
	if err := r.BuildRequirements(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Generate(ctx); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	toolchain, err := os.ReadFile(filepath.Join(ctx.Folders.Generators, cmake.ToolchainFile))
	if err != nil {
		t.Fatalf("read toolchain: %v", err)
	}
	for _, line := range []string{
		`set(CONAN_PKG_NAME "terminus_cmake" CACHE STRING "" FORCE)`,
		`set(CONAN_PKG_VERSION "1.0.9" CACHE STRING "" FORCE)`,
		`set(CONAN_PKG_URL "https://github.com/Terminus-Geospatial/terminus_cmake" CACHE STRING "" FORCE)`,
		`set(TERMINUS_CMAKE_ENABLE_TESTS "ON" CACHE STRING "" FORCE)`,
	} {
		if !strings.Contains(string(toolchain), line) {
			t.Errorf("toolchain missing %q", line)
		}
	}

	data, err := os.ReadFile(filepath.Join(ctx.Folders.Generators, cmake.DepsFile))
	if err != nil {
		t.Fatalf("read deps: %v", err)
	}
	desc, err := cmake.ReadDeps(data)
	if err != nil {
		t.Fatalf("ReadDeps: %v", err)
	}
	if desc.Variables[VarEnableTests] != "ON" || desc.Variables[VarPkgName] != "terminus_cmake" {
		t.Errorf("deps variables = %v", desc.Variables)
	}
	if len(desc.BuildRequires) != 1 || desc.BuildRequires[0] != CMakeRequirement {
		t.Errorf("deps build_requires = %v", desc.BuildRequires)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	ctx := newContext(t, nil, nil)
	r := New()

	read := func() (string, string) {
		if err := r.Generate(ctx); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		tc, err := os.ReadFile(filepath.Join(ctx.Folders.Generators, cmake.ToolchainFile))
		if err != nil {
			t.Fatal(err)
		}
		deps, err := os.ReadFile(filepath.Join(ctx.Folders.Generators, cmake.DepsFile))
		if err != nil {
			t.Fatal(err)
		}
		return string(tc), string(deps)
	}

	tc1, deps1 := read()
	tc2, deps2 := read()
	if tc1 != tc2 {
		t.Errorf("toolchain differs between runs:\n%s\n---\n%s", tc1, tc2)
	}
	if deps1 != deps2 {
		t.Errorf("deps differ between runs:\n%s\n---\n%s", deps1, deps2)
	}
}

func TestBuildAndPackageCommands(t *testing.T) {
	tests := []struct {
		withTests string
		wantCTest bool
	}{
		{recipe.True, true},
		{recipe.False, false},
	}
	for _, tt := range tests {
		t.Run(tt.withTests, func(t *testing.T) {
			ctx := newContext(t, map[string]string{"build_type": "Release"}, map[string]string{OptionWithTests: tt.withTests})
			runner := &fakeRunner{}
			ctx.SetRunner(runner)
			r := New()

			if err := r.Build(ctx); err != nil {
				t.Fatalf("Build: %v", err)
			}
			if err := r.Package(ctx); err != nil {
				t.Fatalf("Package: %v", err)
			}

			toolchain := filepath.Join(ctx.Folders.Generators, cmake.ToolchainFile)
			if !strings.Contains(runner.calls[0], "-DCMAKE_TOOLCHAIN_FILE:STRING="+toolchain) {
				t.Errorf("configure does not use the generated toolchain: %s", runner.calls[0])
			}
			if !strings.HasPrefix(runner.calls[1], "cmake --build ") {
				t.Errorf("second call = %q, want cmake --build", runner.calls[1])
			}

			var sawCTest bool
			for _, c := range runner.calls {
				if strings.HasPrefix(c, "ctest ") {
					sawCTest = true
				}
			}
			if sawCTest != tt.wantCTest {
				t.Errorf("ctest run = %v, want %v (calls %v)", sawCTest, tt.wantCTest, runner.calls)
			}

			last := runner.calls[len(runner.calls)-1]
			if !strings.HasPrefix(last, "cmake --install ") || !strings.Contains(last, "--prefix "+ctx.Folders.Package) {
				t.Errorf("last call = %q, want install into package folder", last)
			}
		})
	}
}

func TestPackageInfo(t *testing.T) {
	ctx := newContext(t, nil, nil)
	if err := New().PackageInfo(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.CppInfo().BuildDirs; len(got) != 1 || got[0] != "cmake" {
		t.Errorf("BuildDirs = %v, want [cmake]", got)
	}
}

func TestPackageIDIgnoresSettings(t *testing.T) {
	variants := []map[string]string{
		{"os": "linux", "compiler": "gcc", "build_type": "Release", "arch": "amd64"},
		{"os": "windows", "compiler": "msvc", "build_type": "Debug", "arch": "arm64"},
		{"os": "darwin", "compiler": "apple-clang", "build_type": "RelWithDebInfo", "arch": "arm64"},
	}

	var ids []string
	for _, s := range variants {
		ctx := newContext(t, s, nil)
		before, err := ctx.Info().ID()
		if err != nil {
			t.Fatal(err)
		}
		if err := New().PackageID(ctx); err != nil {
			t.Fatal(err)
		}
		after, err := ctx.Info().ID()
		if err != nil {
			t.Fatal(err)
		}
		if before == after {
			t.Errorf("PackageID did not change the identity for %v", s)
		}
		ids = append(ids, after)
	}
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Errorf("package IDs differ across settings: %v", ids)
		}
	}
}
