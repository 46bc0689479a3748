package cmake

import (
	"bytes"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/terminus-geospatial/tcmake/recipe"
)

// DepsFile is the name of the generated dependency descriptor.
const DepsFile = "terminus_deps.yaml"

// Deps generates the dependency descriptor: the package reference, its
// build requirements and the variables handed to the build.
type Deps struct {
	ctx *recipe.Context

	Variables map[string]string
}

// DepsDescriptor is the on-disk form of the dependency descriptor.
type DepsDescriptor struct {
	Package       string            `yaml:"package"`
	BuildRequires []string          `yaml:"build_requires"`
	Variables     map[string]string `yaml:"variables"`
}

// NewDeps returns a Deps writing into ctx's generators folder.
func NewDeps(ctx *recipe.Context) *Deps {
	return &Deps{
		ctx:       ctx,
		Variables: map[string]string{},
	}
}

// Path returns where Generate writes the descriptor.
func (d *Deps) Path() string {
	return filepath.Join(d.ctx.Folders.Generators, DepsFile)
}

// Descriptor returns the descriptor Generate writes.
func (d *Deps) Descriptor() DepsDescriptor {
	desc := DepsDescriptor{
		Package:       d.ctx.Metadata().Ref(),
		BuildRequires: []string{},
		Variables:     map[string]string{},
	}
	for _, v := range d.ctx.Requires().BuildRequires() {
		desc.BuildRequires = append(desc.BuildRequires, v.String())
	}
	for k, v := range d.Variables {
		desc.Variables[k] = v
	}
	return desc
}

// Render returns the YAML encoding of the descriptor. Map keys are
// emitted sorted.
func (d *Deps) Render() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.Descriptor()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Generate writes the descriptor file.
func (d *Deps) Generate() error {
	data, err := d.Render()
	if err != nil {
		return err
	}
	return writeFile(d.Path(), data)
}

// ReadDeps parses a descriptor written by Generate.
func ReadDeps(data []byte) (*DepsDescriptor, error) {
	var desc DepsDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}
