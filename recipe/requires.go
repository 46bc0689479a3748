package recipe

import (
	"fmt"
	"slices"

	"github.com/terminus-geospatial/tcmake/pkgs/mod/module"
)

// Requirements collects the requirements declared by a recipe.
type Requirements struct {
	build []module.Version
}

// BuildRequire declares a tool needed at build time. ref has the form
// "name/version" and must pin one exact version. Declaring the same tool
// twice with different versions is an error.
func (r *Requirements) BuildRequire(ref string) error {
	v, err := module.ParseRef(ref)
	if err != nil {
		return err
	}
	if err := v.CheckPinned(); err != nil {
		return err
	}
	for _, prev := range r.build {
		if prev.Path != v.Path {
			continue
		}
		if prev.Version != v.Version {
			return fmt.Errorf("conflicting build requirements %s and %s", prev, v)
		}
		return nil
	}
	r.build = append(r.build, v)
	return nil
}

// BuildRequires returns the declared build requirements in declaration order.
func (r *Requirements) BuildRequires() []module.Version {
	return slices.Clone(r.build)
}
