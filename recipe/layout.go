package recipe

import "path/filepath"

// Folders is the on-disk layout of one session.
type Folders struct {
	Root       string // recipe (exported sources) root
	Source     string
	Build      string
	Generators string
	Package    string
}

// CMakeLayout applies the conventional CMake layout rooted at
// ctx.Folders.Root:
//
//	source     = <root>
//	build      = <root>/build/<build_type>
//	generators = <build>/generators
func CMakeLayout(ctx *Context) {
	root := ctx.Folders.Root
	ctx.Folders.Source = root
	ctx.Folders.Build = filepath.Join(root, "build", ctx.settings.BuildType())
	ctx.Folders.Generators = filepath.Join(ctx.Folders.Build, "generators")
}
