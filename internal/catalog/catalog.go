// Package catalog loads the per-application rule catalog: for every
// application name, the portable glob rules locating its save files on each
// OS family.
package catalog

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/placeholder"
	"github.com/thoreinstein/savekeep/pkg/fileutil"
)

// ErrUnsupportedFormat is returned for catalog files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Files holds the rules of one application partitioned by OS family.
type Files struct {
	Windows []string `yaml:"windows,omitempty" toml:"windows,omitempty"`
	Linux   []string `yaml:"linux,omitempty" toml:"linux,omitempty"`
	Mac     []string `yaml:"mac,omitempty" toml:"mac,omitempty"`
}

// Entry is one application in the catalog.
type Entry struct {
	Files Files `yaml:"files" toml:"files"`
}

// Rules returns the rules that apply when resolving for family. Windows
// rules always apply because non-Windows hosts run Windows builds inside
// compatibility prefixes.
func (e Entry) Rules(family placeholder.Family) []string {
	rules := slices.Clone(e.Files.Windows)
	switch family {
	case placeholder.Linux:
		rules = append(rules, e.Files.Linux...)
	case placeholder.MacOS:
		rules = append(rules, e.Files.Mac...)
	}
	return rules
}

// Catalog maps cleaned application names to their entries.
type Catalog map[string]Entry

// Lookup finds an application by name, cleaning it first.
func (c Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c[CleanName(name)]
	return e, ok
}

// Names returns the application names in sorted order.
func (c Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// Load reads one catalog file. The format is chosen by extension:
// .yaml/.yml or .toml.
func Load(path string) (Catalog, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading catalog %s", path)
	}

	raw := map[string]Entry{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing catalog %s", path)
	}

	cat := make(Catalog, len(raw))
	for name, entry := range raw {
		cat[CleanName(name)] = entry
	}
	return cat, nil
}

// LoadAll loads every file in order and merges them. An application defined
// in a later file replaces the earlier definition.
func LoadAll(paths ...string) (Catalog, error) {
	merged := Catalog{}
	for _, p := range paths {
		cat, err := Load(p)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, cat)
	}
	return merged, nil
}

// CleanName strips trademark symbols and surrounding whitespace, so that
// launcher names and catalog keys compare equal.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "™", "")
	name = strings.ReplaceAll(name, "®", "")
	return strings.TrimSpace(name)
}
