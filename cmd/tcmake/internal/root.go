package internal

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "tcmake",
	Short: "tcmake builds and packages terminus_cmake",
	Long: `tcmake drives the terminus_cmake package recipe: it exports the CMake macro
sources, generates the toolchain and dependency descriptors, builds and
installs the package, and caches the result by package ID.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := logging.New(os.Stderr, verbose)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
