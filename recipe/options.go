package recipe

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
)

var (
	// ErrUnknownOption is returned for an option the recipe does not declare.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidOptionValue is returned for a value outside the allowed set.
	ErrInvalidOptionValue = errors.New("invalid option value")
	// ErrUnknownSetting is returned for a setting the recipe does not declare.
	ErrUnknownSetting = errors.New("unknown setting")
)

const (
	True  = "True"
	False = "False"
)

// OptionValues maps option names to their resolved values.
type OptionValues map[string]string

// Clone returns a copy of o.
func (o OptionValues) Clone() OptionValues {
	return maps.Clone(o)
}

// Get returns the value of option name, or "" if it is unset.
func (o OptionValues) Get(name string) string {
	return o[name]
}

// Bool reports whether option name is set to True.
func (o OptionValues) Bool(name string) bool {
	return o[name] == True
}

// isBoolOption reports whether allowed is the {True, False} set.
func isBoolOption(allowed []string) bool {
	return len(allowed) == 2 && slices.Contains(allowed, True) && slices.Contains(allowed, False)
}

// normalizeBool maps the usual spellings of a boolean to True/False.
func normalizeBool(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return True, true
	case "false", "0", "off", "no":
		return False, true
	}
	return "", false
}

// ResolveOptions merges overrides onto the default options and validates
// every value against its allowed set. Boolean options accept the usual
// spellings (true, 1, ON, ...) and are normalized to True/False.
func (m Metadata) ResolveOptions(overrides map[string]string) (OptionValues, error) {
	values := make(OptionValues, len(m.Options))
	for name := range m.Options {
		values[name] = m.DefaultOptions[name]
	}
	for name, v := range overrides {
		if _, ok := m.Options[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
		}
		values[name] = v
	}
	for name, v := range values {
		allowed := m.Options[name]
		if isBoolOption(allowed) {
			b, ok := normalizeBool(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s=%q, want True or False", ErrInvalidOptionValue, name, v)
			}
			values[name] = b
			continue
		}
		if !slices.Contains(allowed, v) {
			return nil, fmt.Errorf("%w: %s=%q, allowed %v", ErrInvalidOptionValue, name, v, allowed)
		}
	}
	return values, nil
}

// -----------------------------------------------------------------------------

// Settings maps setting names (os, compiler, build_type, arch) to values.
type Settings map[string]string

// Clone returns a copy of s.
func (s Settings) Clone() Settings {
	return maps.Clone(s)
}

// BuildType returns the build_type setting, defaulting to Release.
func (s Settings) BuildType() string {
	if bt := s["build_type"]; bt != "" {
		return bt
	}
	return "Release"
}

// hostSettings returns the defaults detected from the running host.
func hostSettings() Settings {
	return Settings{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"build_type": "Release",
	}
}

// ResolveSettings merges overrides onto the host defaults, keeping only the
// settings the recipe declares.
func (m Metadata) ResolveSettings(overrides map[string]string) (Settings, error) {
	for name := range overrides {
		if !slices.Contains(m.Settings, name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
		}
	}
	defaults := hostSettings()
	values := make(Settings, len(m.Settings))
	for _, name := range m.Settings {
		if v, ok := overrides[name]; ok {
			values[name] = v
		} else if v, ok := defaults[name]; ok {
			values[name] = v
		}
	}
	return values, nil
}
