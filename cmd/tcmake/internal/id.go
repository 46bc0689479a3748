package internal

import (
	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/build"
)

var idFlags recipeFlags

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print the package ID for a configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := idFlags.resolve()
		if err != nil {
			return err
		}
		id, err := newBuilder(p, build.Options{}).PackageID(newRecipe())
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", id)
		return nil
	},
}

func init() {
	idFlags.register(idCmd)
	rootCmd.AddCommand(idCmd)
}
