package recipe

import (
	"errors"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
)

func testMetadata() Metadata {
	return Metadata{
		Name:           "demo",
		Version:        "1.2.3",
		Topics:         []string{"a", "b"},
		ExportsSources: []string{"CMakeLists.txt"},
		Options: map[string][]string{
			"with_tests": {True, False},
			"flavor":     {"plain", "fancy"},
		},
		DefaultOptions: map[string]string{
			"with_tests": False,
			"flavor":     "plain",
		},
		Settings: []string{"os", "compiler", "build_type", "arch"},
	}
}

func TestMetadata_Clone(t *testing.T) {
	meta := testMetadata()
	clone := meta.Clone()

	clone.Topics[0] = "x"
	clone.Options["with_tests"][0] = "x"
	clone.DefaultOptions["flavor"] = "x"
	clone.Settings[0] = "x"

	if meta.Topics[0] != "a" || meta.Options["with_tests"][0] != True ||
		meta.DefaultOptions["flavor"] != "plain" || meta.Settings[0] != "os" {
		t.Fatalf("Clone() shares state with original: %#v", meta)
	}
	if meta.Ref() != "demo/1.2.3" {
		t.Errorf("Ref() = %q", meta.Ref())
	}
}

func TestResolveOptions(t *testing.T) {
	meta := testMetadata()

	tests := []struct {
		name      string
		overrides map[string]string
		want      OptionValues
		wantErr   error
	}{
		{
			name: "defaults",
			want: OptionValues{"with_tests": False, "flavor": "plain"},
		},
		{
			name:      "bool spellings",
			overrides: map[string]string{"with_tests": "ON"},
			want:      OptionValues{"with_tests": True, "flavor": "plain"},
		},
		{
			name:      "lowercase false",
			overrides: map[string]string{"with_tests": "false"},
			want:      OptionValues{"with_tests": False, "flavor": "plain"},
		},
		{
			name:      "enum value",
			overrides: map[string]string{"flavor": "fancy"},
			want:      OptionValues{"with_tests": False, "flavor": "fancy"},
		},
		{
			name:      "unknown option",
			overrides: map[string]string{"shared": "True"},
			wantErr:   ErrUnknownOption,
		},
		{
			name:      "bad bool",
			overrides: map[string]string{"with_tests": "maybe"},
			wantErr:   ErrInvalidOptionValue,
		},
		{
			name:      "bad enum",
			overrides: map[string]string{"flavor": "spicy"},
			wantErr:   ErrInvalidOptionValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := meta.ResolveOptions(tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveOptions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOptions() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveOptions() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolveSettings(t *testing.T) {
	meta := testMetadata()

	got, err := meta.ResolveSettings(map[string]string{"build_type": "Debug", "compiler": "gcc"})
	if err != nil {
		t.Fatalf("ResolveSettings() error = %v", err)
	}
	want := Settings{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"build_type": "Debug",
		"compiler":   "gcc",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveSettings() = %#v, want %#v", got, want)
	}

	if _, err := meta.ResolveSettings(map[string]string{"libc": "musl"}); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("ResolveSettings(libc) error = %v, want ErrUnknownSetting", err)
	}

	if bt := (Settings{}).BuildType(); bt != "Release" {
		t.Errorf("BuildType() default = %q, want Release", bt)
	}
}

func TestRequirements_BuildRequire(t *testing.T) {
	var reqs Requirements

	if err := reqs.BuildRequire("cmake/4.1.2"); err != nil {
		t.Fatalf("BuildRequire() error = %v", err)
	}
	if err := reqs.BuildRequire("cmake/4.1.2"); err != nil {
		t.Fatalf("BuildRequire() duplicate error = %v", err)
	}
	if err := reqs.BuildRequire("cmake/4.0.0"); err == nil {
		t.Fatalf("BuildRequire() conflicting version error = nil")
	}
	if err := reqs.BuildRequire("ninja/[>=1.10]"); !errors.Is(err, module.ErrInvalidRef) {
		t.Fatalf("BuildRequire() range error = %v, want ErrInvalidRef", err)
	}

	want := []module.Version{{Path: "cmake", Version: "4.1.2"}}
	if got := reqs.BuildRequires(); !reflect.DeepEqual(got, want) {
		t.Errorf("BuildRequires() = %#v, want %#v", got, want)
	}
}

func TestInfo_ID(t *testing.T) {
	a := Info{
		Settings: Settings{"os": "linux", "build_type": "Release"},
		Options:  OptionValues{"with_tests": False},
	}
	b := Info{
		Settings: Settings{"build_type": "Release", "os": "linux"},
		Options:  OptionValues{"with_tests": False},
	}
	c := Info{
		Settings: Settings{"os": "windows", "build_type": "Debug"},
		Options:  OptionValues{"with_tests": False},
	}

	idA, err := a.ID()
	if err != nil {
		t.Fatalf("ID() error = %v", err)
	}
	idB, _ := b.ID()
	idC, _ := c.ID()
	if idA != idB {
		t.Errorf("ID() depends on map order: %s != %s", idA, idB)
	}
	if idA == idC {
		t.Errorf("ID() equal for different settings: %s", idA)
	}
	if len(idA) != 16 {
		t.Errorf("ID() = %q, want 16 hex digits", idA)
	}

	a.Clear()
	c.Clear()
	idA, _ = a.ID()
	idC, _ = c.ID()
	if idA != idC {
		t.Errorf("ID() after Clear differs: %s != %s", idA, idC)
	}
	empty := Info{}
	if idE, _ := empty.ID(); idE != idA {
		t.Errorf("cleared ID %s != zero Info ID %s", idA, idE)
	}
}

type recordRunner struct {
	calls [][]string
}

func (r *recordRunner) Run(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil
}

func TestContext(t *testing.T) {
	meta := testMetadata()
	settings := Settings{"build_type": "Debug"}
	options := OptionValues{"with_tests": True}
	ctx := NewContext(meta, settings, options)

	// Callers cannot mutate the context through returned values.
	ctx.Metadata().Topics[0] = "x"
	ctx.Options()["with_tests"] = False
	ctx.Settings()["build_type"] = "Release"
	if ctx.Metadata().Topics[0] != "a" || !ctx.Options().Bool("with_tests") || ctx.Settings().BuildType() != "Debug" {
		t.Fatalf("Context leaked internal state")
	}

	if got := ctx.Info().Settings["build_type"]; got != "Debug" {
		t.Errorf("Info().Settings[build_type] = %q, want Debug", got)
	}

	r := &recordRunner{}
	ctx.SetRunner(r)
	if err := ctx.Exec("cmake", "--version"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if len(r.calls) != 1 || r.calls[0][0] != "cmake" || r.calls[0][1] != "--version" {
		t.Errorf("runner calls = %v", r.calls)
	}

	ctx.SetRunner(nil)
	if _, ok := ctx.Runner().(shellRunner); !ok {
		t.Errorf("SetRunner(nil) did not restore the shell runner")
	}
}

func TestCMakeLayout(t *testing.T) {
	root := t.TempDir()
	ctx := NewContext(testMetadata(), Settings{"build_type": "Debug"}, nil)
	ctx.Folders.Root = root

	CMakeLayout(ctx)

	if ctx.Folders.Source != root {
		t.Errorf("Source = %q, want %q", ctx.Folders.Source, root)
	}
	if want := filepath.Join(root, "build", "Debug"); ctx.Folders.Build != want {
		t.Errorf("Build = %q, want %q", ctx.Folders.Build, want)
	}
	if want := filepath.Join(root, "build", "Debug", "generators"); ctx.Folders.Generators != want {
		t.Errorf("Generators = %q, want %q", ctx.Folders.Generators, want)
	}
}
