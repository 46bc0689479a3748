// Package profile loads build profiles: named sets of settings and option
// values applied before command line overrides.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidAssignment is returned for a command line assignment that is
// not of the form key=value.
var ErrInvalidAssignment = errors.New("invalid assignment")

// Profile holds settings and option values.
//
// On disk a profile is YAML:
//
//	settings:
//	  build_type: Debug
//	options:
//	  with_tests: "True"
type Profile struct {
	Settings map[string]string `yaml:"settings,omitempty"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// Load reads the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile. Unknown top-level keys are rejected.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &p, nil
}

// Apply overlays settings and options on p. Values from the arguments win.
func (p *Profile) Apply(settings, options map[string]string) {
	p.Settings = merge(p.Settings, settings)
	p.Options = merge(p.Options, options)
}

func merge(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(over))
	}
	for k, v := range over {
		base[k] = v
	}
	return base
}

// ParseAssignments parses command line values of the form key=value.
// A later assignment to the same key wins.
func ParseAssignments(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(values))
	for _, kv := range values {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w %q: want key=value", ErrInvalidAssignment, kv)
		}
		m[k] = strings.TrimSpace(v)
	}
	return m, nil
}
