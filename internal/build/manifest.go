package build

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/terminus-geospatial/tcmake/pkgs/buildsys/cmake"
)

// ManifestFile is written into every created package folder.
const ManifestFile = "manifest.yaml"

// Manifest describes a created package to its consumers.
type Manifest struct {
	Name          string            `yaml:"name"`
	Version       string            `yaml:"version"`
	PackageID     string            `yaml:"package_id"`
	BuildDirs     []string          `yaml:"builddirs"`
	BuildRequires []string          `yaml:"build_requires,omitempty"`
	Settings      map[string]string `yaml:"settings,omitempty"`
	Options       map[string]string `yaml:"options,omitempty"`
	Variables     map[string]string `yaml:"variables,omitempty"`
}

func newManifest(s *session, id string) (*Manifest, error) {
	info := s.ctx.Info()
	m := &Manifest{
		Name:      s.meta.Name,
		Version:   s.meta.Version,
		PackageID: id,
		BuildDirs: s.ctx.CppInfo().Clone().BuildDirs,
		Settings:  info.Settings,
		Options:   info.Options,
	}
	for _, req := range s.ctx.Requires().BuildRequires() {
		m.BuildRequires = append(m.BuildRequires, req.String())
	}
	// Variables come from the dependency descriptor when the recipe
	// generated one.
	data, err := os.ReadFile(filepath.Join(s.ctx.Folders.Generators, cmake.DepsFile))
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	desc, err := cmake.ReadDeps(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmake.DepsFile, err)
	}
	m.Variables = desc.Variables
	return m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

// ReadManifest reads the manifest of the package in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
