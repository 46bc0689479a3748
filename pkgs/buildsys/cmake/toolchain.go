package cmake

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/terminus-geospatial/tcmake/recipe"
)

// ToolchainFile is the name of the generated toolchain descriptor.
const ToolchainFile = "terminus_toolchain.cmake"

// Toolchain generates a CMake toolchain file carrying cache variables
// into the configure step.
type Toolchain struct {
	ctx *recipe.Context

	// Variables are written as STRING cache entries.
	Variables map[string]string
}

// NewToolchain returns a Toolchain writing into ctx's generators folder.
func NewToolchain(ctx *recipe.Context) *Toolchain {
	return &Toolchain{
		ctx:       ctx,
		Variables: map[string]string{},
	}
}

// Path returns where Generate writes the toolchain file.
func (t *Toolchain) Path() string {
	return filepath.Join(t.ctx.Folders.Generators, ToolchainFile)
}

// Render returns the toolchain file content. Variables appear sorted by
// name, so equal inputs render byte-identical output.
func (t *Toolchain) Render() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by tcmake for %s. Do not edit.\n", t.ctx.Metadata().Ref())
	buf.WriteString("include_guard()\n\n")
	for _, name := range sortedKeys(t.Variables) {
		fmt.Fprintf(&buf, "set(%s \"%s\" CACHE STRING \"\" FORCE)\n", name, escape(t.Variables[name]))
	}
	return buf.Bytes()
}

// Generate writes the toolchain file.
func (t *Toolchain) Generate() error {
	return writeFile(t.Path(), t.Render())
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
)

// escape quotes s for a CMake quoted argument.
func escape(s string) string {
	return escaper.Replace(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
