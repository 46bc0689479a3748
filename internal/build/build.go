package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/terminus-geospatial/tcmake/internal/export"
	"github.com/terminus-geospatial/tcmake/internal/logging"
	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
	"github.com/terminus-geospatial/tcmake/recipe"
)

// Hook and host step names, as reported by HookError.
const (
	StepExport            = "export"
	HookLayout            = "layout"
	HookBuildRequirements = "build_requirements"
	HookGenerate          = "generate"
	HookBuild             = "build"
	HookPackage           = "package"
	HookPackageInfo       = "package_info"
	HookPackageID         = "package_id"
)

// HookError attributes a failure to the lifecycle step that produced it.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return e.Hook + ": " + e.Err.Error()
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Options configures a Builder.
type Options struct {
	// WorkspaceDir holds exported sources, build trees, packages and the
	// build cache.
	WorkspaceDir string

	// SourceDir is the recipe source root that exports_sources patterns
	// are resolved against.
	SourceDir string

	// Settings and Options override recipe defaults.
	Settings map[string]string
	Options  map[string]string

	// Force rebuilds a package even if the cache holds it.
	Force bool

	// SkipToolCheck skips locating build requirements on the host.
	SkipToolCheck bool

	// Resolver locates build requirements. Nil uses PathResolver.
	Resolver ToolResolver

	// Runner executes external commands for the hooks. Nil keeps the
	// context's shell runner.
	Runner recipe.Runner
}

// Result describes a created package.
type Result struct {
	Ref        string
	PackageID  string
	PackageDir string
	BuildDirs  []string
	Cached     bool
}

// Builder drives a recipe through its lifecycle.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder for opts.
func NewBuilder(opts Options) *Builder {
	if opts.Resolver == nil {
		opts.Resolver = PathResolver{}
	}
	return &Builder{opts: opts}
}

// session is one resolved host run of a recipe.
type session struct {
	r    recipe.Recipe
	meta recipe.Metadata
	ctx  *recipe.Context
}

func (b *Builder) newSession(r recipe.Recipe) (*session, error) {
	meta := r.Metadata()
	if err := (module.Version{Path: meta.Name, Version: meta.Version}).CheckPinned(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", meta.Ref(), err)
	}
	settings, err := meta.ResolveSettings(b.opts.Settings)
	if err != nil {
		return nil, err
	}
	options, err := meta.ResolveOptions(b.opts.Options)
	if err != nil {
		return nil, err
	}
	ctx := recipe.NewContext(meta, settings, options)
	if b.opts.Runner != nil {
		ctx.SetRunner(b.opts.Runner)
	}
	return &session{r: r, meta: meta, ctx: ctx}, nil
}

// PackageID returns the identity of the package r produces under the
// builder's settings and options.
func (b *Builder) PackageID(r recipe.Recipe) (string, error) {
	s, err := b.newSession(r)
	if err != nil {
		return "", err
	}
	return s.packageID()
}

// packageID evaluates the package_id hook on a fresh context, leaving the
// session context untouched.
func (s *session) packageID() (string, error) {
	probe := recipe.NewContext(s.meta, s.ctx.Settings(), s.ctx.Options())
	if err := s.r.PackageID(probe); err != nil {
		return "", &HookError{Hook: HookPackageID, Err: err}
	}
	return probe.Info().ID()
}

func (b *Builder) exportDir(meta recipe.Metadata) (string, error) {
	dir, err := b.versionDir(meta)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "export"), nil
}

func (b *Builder) export(ctx context.Context, s *session) error {
	dir, err := b.exportDir(s.meta)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return &HookError{Hook: StepExport, Err: err}
	}
	files, err := export.Copy(b.opts.SourceDir, dir, s.meta.ExportsSources)
	if err != nil {
		return &HookError{Hook: StepExport, Err: err}
	}
	logging.From(ctx).Debug().Int("files", len(files)).Str("dir", dir).Msg("exported sources")
	s.ctx.Folders.Root = dir
	return nil
}

func (b *Builder) buildRequirements(ctx context.Context, s *session, resolve bool) error {
	if err := s.r.BuildRequirements(s.ctx); err != nil {
		return &HookError{Hook: HookBuildRequirements, Err: err}
	}
	log := logging.From(ctx)
	for _, req := range s.ctx.Requires().BuildRequires() {
		if !resolve {
			log.Warn().Str("tool", req.String()).Msg("tool check skipped")
			continue
		}
		path, err := b.opts.Resolver.Resolve(ctx, req)
		if err != nil {
			return &HookError{Hook: HookBuildRequirements, Err: err}
		}
		log.Debug().Str("tool", req.String()).Str("path", path).Msg("resolved build requirement")
	}
	return nil
}

func runHook(ctx context.Context, name string, hook func(*recipe.Context) error, rctx *recipe.Context) error {
	log := logging.From(ctx)
	log.Debug().Str("hook", name).Msg("run hook")
	start := time.Now()
	if err := hook(rctx); err != nil {
		return &HookError{Hook: name, Err: err}
	}
	log.Debug().Str("hook", name).Dur("elapsed", time.Since(start)).Msg("hook done")
	return nil
}

// Generate exports the recipe sources and writes the generated files. A
// non-empty outputDir replaces the generators folder chosen by the layout.
// Build requirements are declared but not resolved.
func (b *Builder) Generate(ctx context.Context, r recipe.Recipe, outputDir string) (*recipe.Context, error) {
	s, err := b.newSession(r)
	if err != nil {
		return nil, err
	}

	// export rewrites the tree a concurrent create builds from
	unlock, err := b.lockPackage(s.meta)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.meta.Ref(), err)
	}
	defer unlock()

	if err := b.export(ctx, s); err != nil {
		return nil, err
	}
	if err := runHook(ctx, HookLayout, s.r.Layout, s.ctx); err != nil {
		return nil, err
	}
	if outputDir != "" {
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return nil, err
		}
		s.ctx.Folders.Generators = abs
	}
	if err := b.buildRequirements(ctx, s, false); err != nil {
		return nil, err
	}
	if err := runHook(ctx, HookGenerate, s.r.Generate, s.ctx); err != nil {
		return nil, err
	}
	logging.From(ctx).Info().Str("ref", s.meta.Ref()).Str("dir", s.ctx.Folders.Generators).Msg("generated")
	return s.ctx, nil
}

// Create builds and packages r. A package already recorded in the cache is
// returned without rebuilding unless Force is set.
func (b *Builder) Create(ctx context.Context, r recipe.Recipe) (*Result, error) {
	log := logging.From(ctx)

	s, err := b.newSession(r)
	if err != nil {
		return nil, err
	}
	id, err := s.packageID()
	if err != nil {
		return nil, err
	}
	ref := s.meta.Ref()
	packageDir, err := b.packageDir(s.meta, id)
	if err != nil {
		return nil, err
	}

	unlock, err := b.lockPackage(s.meta)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", ref, err)
	}
	defer unlock()

	cache, err := b.loadCache(s.meta.Name)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load build cache: %w", err)
	}
	if cache == nil {
		cache = &buildCache{}
	}

	if entry, ok := cache.get(s.meta.Version, id); ok && !b.opts.Force {
		if _, err := os.Stat(entry.PackageDir); err == nil {
			log.Info().Str("ref", ref).Str("package_id", id).Msg("package found in cache")
			return &Result{
				Ref:        ref,
				PackageID:  id,
				PackageDir: entry.PackageDir,
				BuildDirs:  entry.BuildDirs,
				Cached:     true,
			}, nil
		}
	}

	if err := b.export(ctx, s); err != nil {
		return nil, err
	}
	if err := runHook(ctx, HookLayout, s.r.Layout, s.ctx); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(packageDir); err != nil {
		return nil, err
	}
	s.ctx.Folders.Package = packageDir

	if err := b.buildRequirements(ctx, s, !b.opts.SkipToolCheck); err != nil {
		return nil, err
	}
	for _, h := range []struct {
		name string
		fn   func(*recipe.Context) error
	}{
		{HookGenerate, s.r.Generate},
		{HookBuild, s.r.Build},
		{HookPackage, s.r.Package},
		{HookPackageInfo, s.r.PackageInfo},
		{HookPackageID, s.r.PackageID},
	} {
		if err := runHook(ctx, h.name, h.fn, s.ctx); err != nil {
			return nil, err
		}
	}

	final, err := s.ctx.Info().ID()
	if err != nil {
		return nil, err
	}
	if final != id {
		return nil, &HookError{Hook: HookPackageID, Err: fmt.Errorf("package id is not deterministic: %s != %s", final, id)}
	}

	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return nil, err
	}
	buildDirs := s.ctx.CppInfo().Clone().BuildDirs
	m, err := newManifest(s, id)
	if err == nil {
		err = writeManifest(packageDir, m)
	}
	if err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	cache.set(s.meta.Version, id, &buildEntry{
		PackageID:  id,
		PackageDir: packageDir,
		BuildDirs:  buildDirs,
		BuildTime:  time.Now(),
	})
	if err := b.saveCache(s.meta.Name, cache); err != nil {
		return nil, fmt.Errorf("save build cache: %w", err)
	}

	log.Info().Str("ref", ref).Str("package_id", id).Str("dir", packageDir).Msg("package created")
	return &Result{
		Ref:        ref,
		PackageID:  id,
		PackageDir: packageDir,
		BuildDirs:  buildDirs,
	}, nil
}
