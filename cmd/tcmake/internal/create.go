package internal

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/build"
)

var (
	createFlags         recipeFlags
	createSource        sourceFlags
	createForce         bool
	createSkipToolCheck bool
	createDeploy        string
)

var createCmd = &cobra.Command{
	Use:   "create [recipe-dir]",
	Short: "Build and package the recipe",
	Long: `Create exports the recipe sources, runs every lifecycle hook and records
the package in the workspace cache. A package already in the cache is reused
unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createFlags.register(createCmd)
	createSource.register(createCmd)
	createCmd.Flags().BoolVar(&createForce, "force", false, "Rebuild even if the package is cached")
	createCmd.Flags().BoolVar(&createSkipToolCheck, "skip-tool-check", false, "Do not check build requirements against the host tools")
	createCmd.Flags().StringVar(&createDeploy, "deploy", "", "Copy the package to this directory or .zip file")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r := newRecipe()

	p, err := createFlags.resolve()
	if err != nil {
		return err
	}
	ws, err := workDir()
	if err != nil {
		return err
	}
	src, err := createSource.sourceDir(ctx, ws, r.Metadata(), args)
	if err != nil {
		return err
	}

	// Resolve deploy path to absolute before the build runs tools elsewhere
	if createDeploy != "" {
		abs, err := filepath.Abs(createDeploy)
		if err != nil {
			return fmt.Errorf("failed to resolve deploy path: %w", err)
		}
		createDeploy = abs
	}

	builder := newBuilder(p, build.Options{
		WorkspaceDir:  ws,
		SourceDir:     src,
		Force:         createForce,
		SkipToolCheck: createSkipToolCheck,
	})
	res, err := builder.Create(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.Metadata().Ref(), err)
	}

	printf(cmd, "%s:%s\n", res.Ref, res.PackageID)
	printf(cmd, "  package:  %s\n", res.PackageDir)
	printf(cmd, "  builddirs: %s\n", strings.Join(res.BuildDirs, ", "))
	if res.Cached {
		printf(cmd, "  (cached)\n")
	}

	if createDeploy != "" {
		if err := deployPackage(res.PackageDir, createDeploy); err != nil {
			return fmt.Errorf("failed to deploy package: %w", err)
		}
		printf(cmd, "  deployed: %s\n", createDeploy)
	}
	return nil
}

// deployPackage writes the package to dest.
// If dest ends with ".zip", creates a zip archive; otherwise copies the directory.
func deployPackage(srcDir, dest string) error {
	if strings.HasSuffix(dest, ".zip") {
		return zipDir(srcDir, dest)
	}
	return os.CopyFS(dest, os.DirFS(srcDir))
}

// zipDir creates a zip archive at dest from the contents of srcDir.
func zipDir(srcDir, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	defer w.Close()

	return filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}
