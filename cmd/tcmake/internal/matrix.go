package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terminus-geospatial/tcmake/internal/build"
	"github.com/terminus-geospatial/tcmake/internal/profile"
	"github.com/terminus-geospatial/tcmake/recipe"
)

var (
	matrixSettings []string
	matrixIDs      bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "List the settings and options combinations",
	Long: `Matrix lists every combination of the given setting values with the recipe
options. Settings are given as key=value1,value2.`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringArrayVarP(&matrixSettings, "setting", "s", nil, "Setting axis, key=v1,v2 (repeatable)")
	matrixCmd.Flags().BoolVar(&matrixIDs, "ids", false, "Print the package ID of each combination")
	rootCmd.AddCommand(matrixCmd)
}

// parseAxes parses key=v1,v2 assignments into setting axes.
func parseAxes(values []string) (map[string][]string, error) {
	kv, err := profile.ParseAssignments(values)
	if err != nil {
		return nil, err
	}
	axes := make(map[string][]string, len(kv))
	for k, v := range kv {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				axes[k] = append(axes[k], item)
			}
		}
		if len(axes[k]) == 0 {
			return nil, fmt.Errorf("setting %s has no values", k)
		}
	}
	return axes, nil
}

func runMatrix(cmd *cobra.Command, args []string) error {
	r := newRecipe()
	axes, err := parseAxes(matrixSettings)
	if err != nil {
		return err
	}
	m := recipe.MatrixOf(r.Metadata(), axes)
	combos := m.Combinations()
	points := m.Points()
	for i, c := range combos {
		if !matrixIDs {
			printf(cmd, "%s\n", c)
			continue
		}
		p := &profile.Profile{Settings: points[i].Settings, Options: points[i].Options}
		id, err := newBuilder(p, build.Options{}).PackageID(r)
		if err != nil {
			return err
		}
		printf(cmd, "%s %s\n", c, id)
	}
	printf(cmd, "%d combinations\n", m.CombinationCount())
	return nil
}
