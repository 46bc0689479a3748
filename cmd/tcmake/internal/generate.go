package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/build"
)

var (
	generateFlags  recipeFlags
	generateSource sourceFlags
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate [recipe-dir]",
	Short: "Write the toolchain and dependency descriptors",
	Long: `Generate exports the recipe sources and writes the CMake toolchain file and
the dependency descriptor, without building anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateFlags.register(generateCmd)
	generateSource.register(generateCmd)
	generateCmd.Flags().StringVar(&generateOutput, "output-folder", "", "Write the generated files here instead of the generators folder")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r := newRecipe()

	p, err := generateFlags.resolve()
	if err != nil {
		return err
	}
	ws, err := workDir()
	if err != nil {
		return err
	}
	src, err := generateSource.sourceDir(ctx, ws, r.Metadata(), args)
	if err != nil {
		return err
	}

	builder := newBuilder(p, build.Options{WorkspaceDir: ws, SourceDir: src})
	rctx, err := builder.Generate(ctx, r, generateOutput)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", r.Metadata().Ref(), err)
	}
	printf(cmd, "%s\n", rctx.Folders.Generators)
	return nil
}
