package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/build"
	"github.com/terminus-geospatial/tcmake/internal/env"
	"github.com/terminus-geospatial/tcmake/internal/logging"
	"github.com/terminus-geospatial/tcmake/internal/profile"
	"github.com/terminus-geospatial/tcmake/internal/terminus"
	"github.com/terminus-geospatial/tcmake/internal/vcs"
	"github.com/terminus-geospatial/tcmake/recipe"
)

// recipeFlags are the settings and option flags shared by the commands
// that resolve a package configuration.
type recipeFlags struct {
	settings []string
	options  []string
	profile  string
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.settings, "setting", "s", nil, "Setting override, key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.options, "option", "o", nil, "Option override, key=value (repeatable)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "YAML profile with settings and options")
}

// resolve merges the profile with command line assignments. Command line
// values win.
func (f *recipeFlags) resolve() (*profile.Profile, error) {
	p := &profile.Profile{}
	if f.profile != "" {
		loaded, err := profile.Load(f.profile)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	settings, err := profile.ParseAssignments(f.settings)
	if err != nil {
		return nil, fmt.Errorf("--setting: %w", err)
	}
	options, err := profile.ParseAssignments(f.options)
	if err != nil {
		return nil, fmt.Errorf("--option: %w", err)
	}
	p.Apply(settings, options)
	return p, nil
}

// sourceFlags select where the recipe sources come from: a local directory
// argument or a git remote.
type sourceFlags struct {
	git string
	ref string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.git, "git", "", "Fetch the recipe sources from this git remote")
	cmd.Flags().StringVar(&f.ref, "ref", "", "Git ref to fetch (default: the tag of the recipe version)")
}

// sourceDir returns the recipe source root. With --git the remote is synced
// into the workspace first.
func (f *sourceFlags) sourceDir(ctx context.Context, workDir string, meta recipe.Metadata, args []string) (string, error) {
	if f.git == "" {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return filepath.Abs(dir)
	}
	if len(args) > 0 {
		return "", fmt.Errorf("recipe directory %q and --git are mutually exclusive", args[0])
	}
	repo := vcs.NewGitVCS()
	ref, err := vcs.ResolveRef(ctx, repo, f.git, f.ref, meta.Version)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(workDir, meta.Name, meta.Version, "source")
	logging.From(ctx).Info().Str("remote", f.git).Str("ref", ref).Msg("fetching sources")
	if err := repo.Sync(ctx, f.git, ref, dir); err != nil {
		return "", fmt.Errorf("fetch %s: %w", f.git, err)
	}
	return dir, nil
}

// newRecipe returns the recipe the commands operate on.
func newRecipe() recipe.Recipe {
	return terminus.New()
}

func workDir() (string, error) {
	dir, err := env.WorkDir()
	if err != nil {
		return "", fmt.Errorf("failed to get workspace dir: %w", err)
	}
	return dir, nil
}

func newBuilder(p *profile.Profile, opts build.Options) *build.Builder {
	opts.Settings = p.Settings
	opts.Options = p.Options
	return build.NewBuilder(opts)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
