package build

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
	"github.com/terminus-geospatial/tcmake/recipe"
)

// installRunner records commands. On "cmake --install" it copies the
// exported cmake/ directory into the install prefix, standing in for a
// real install.
type installRunner struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (r *installRunner) Run(name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	if r.fail != "" && strings.HasPrefix(call, r.fail) {
		return errors.New("exit status 1")
	}
	if name == "cmake" && len(args) > 0 && args[0] == "--install" {
		var prefix string
		for i, a := range args {
			if a == "--prefix" && i+1 < len(args) {
				prefix = args[i+1]
			}
		}
		// build dir is <root>/build/<build_type>
		root := filepath.Dir(filepath.Dir(args[1]))
		return copyTree(filepath.Join(root, "cmake"), filepath.Join(prefix, "cmake"))
	}
	return nil
}

func (r *installRunner) count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

type fakeResolver struct {
	versions map[string]string
	seen     []string
}

func (f *fakeResolver) Resolve(_ context.Context, req module.Version) (string, error) {
	f.seen = append(f.seen, req.String())
	v, ok := f.versions[req.Path]
	if !ok {
		return "", errors.New(req.Path + ": executable file not found in $PATH")
	}
	if v != req.Version {
		return "", ErrToolVersion
	}
	return "/usr/bin/" + req.Path, nil
}

// hookRecipe records the hooks it runs and fails at the named one.
type hookRecipe struct {
	failAt string
	hooks  []string
}

var errHook = errors.New("hook failed")

func (r *hookRecipe) Metadata() recipe.Metadata {
	return recipe.Metadata{
		Name:           "hooks",
		Version:        "0.1.0",
		ExportsSources: []string{"CMakeLists.txt"},
		Settings:       []string{"build_type"},
	}
}

func (r *hookRecipe) hook(name string) error {
	r.hooks = append(r.hooks, name)
	if r.failAt == name {
		return errHook
	}
	return nil
}

func (r *hookRecipe) Layout(ctx *recipe.Context) error {
	recipe.CMakeLayout(ctx)
	return r.hook(HookLayout)
}
func (r *hookRecipe) BuildRequirements(*recipe.Context) error { return r.hook(HookBuildRequirements) }
func (r *hookRecipe) Generate(*recipe.Context) error          { return r.hook(HookGenerate) }
func (r *hookRecipe) Build(*recipe.Context) error             { return r.hook(HookBuild) }
func (r *hookRecipe) Package(*recipe.Context) error           { return r.hook(HookPackage) }
func (r *hookRecipe) PackageInfo(*recipe.Context) error       { return r.hook(HookPackageInfo) }
func (r *hookRecipe) PackageID(*recipe.Context) error         { return r.hook(HookPackageID) }
