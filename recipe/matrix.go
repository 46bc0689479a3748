package recipe

import (
	"sort"
	"strings"
)

// Matrix lists candidate values per setting and per option.
type Matrix struct {
	Settings map[string][]string
	Options  map[string][]string
}

// Point is one combination of a Matrix.
type Point struct {
	Settings Settings
	Options  OptionValues
}

// MatrixOf returns the option axes of meta combined with the given setting
// axes.
func MatrixOf(meta Metadata, settings map[string][]string) Matrix {
	return Matrix{Settings: settings, Options: meta.Clone().Options}
}

// cartesian returns the cartesian product of kvs. Keys are sorted
// alphabetically and the first key varies slowest.
func cartesian(kvs map[string][]string) []map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(kvs))
	for k := range kvs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []map[string]string{{}}
	for _, k := range keys {
		next := make([]map[string]string, 0, len(result)*len(kvs[k]))
		for _, prev := range result {
			for _, v := range kvs[k] {
				p := make(map[string]string, len(prev)+1)
				for pk, pv := range prev {
					p[pk] = pv
				}
				p[k] = v
				next = append(next, p)
			}
		}
		result = next
	}
	return result
}

// join renders p as its values in sorted key order joined with "-".
func join(p map[string]string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = p[k]
	}
	return strings.Join(vals, "-")
}

// Points returns every combination of the matrix.
func (m *Matrix) Points() []Point {
	settings := cartesian(m.Settings)
	options := cartesian(m.Options)
	if len(settings) == 0 && len(options) == 0 {
		return nil
	}
	if len(settings) == 0 {
		settings = []map[string]string{nil}
	}
	if len(options) == 0 {
		options = []map[string]string{nil}
	}
	points := make([]Point, 0, len(settings)*len(options))
	for _, s := range settings {
		for _, o := range options {
			points = append(points, Point{Settings: s, Options: o})
		}
	}
	return points
}

// Combinations returns all cartesian product combinations of the matrix.
// Keys are sorted alphabetically. Setting values are joined with "-", then
// combined with option values using "|".
func (m *Matrix) Combinations() []string {
	points := m.Points()
	if points == nil {
		return nil
	}
	result := make([]string, len(points))
	for i, p := range points {
		s, o := join(p.Settings), join(p.Options)
		switch {
		case s == "":
			result[i] = o
		case o == "":
			result[i] = s
		default:
			result[i] = s + "|" + o
		}
	}
	return result
}

// CombinationCount returns the total number of cartesian product combinations.
func (m *Matrix) CombinationCount() int {
	countPart := func(kvs map[string][]string) int {
		if len(kvs) == 0 {
			return 0
		}
		count := 1
		for _, v := range kvs {
			count *= len(v)
		}
		return count
	}

	settingsCount := countPart(m.Settings)
	optionsCount := countPart(m.Options)

	if settingsCount == 0 {
		return optionsCount
	}
	if optionsCount == 0 {
		return settingsCount
	}
	return settingsCount * optionsCount
}
