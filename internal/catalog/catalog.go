// Package catalog holds the static reference data for report types, categories,
// priorities and statuses. Lookups never fail; a missing key simply has no entry.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var document []byte

// Entry is the display metadata of one catalog key.
type Entry struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Icon        string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Color       string `yaml:"color,omitempty" json:"color,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog is an immutable set of lookup tables.
type Catalog struct {
	types      []Entry
	categories []Entry
	priorities []Entry
	statuses   []Entry

	byType     map[string]Entry
	byCategory map[string]Entry
	byPriority map[string]Entry
	byStatus   map[string]Entry
}

type rawCatalog struct {
	Types      []Entry `yaml:"types"`
	Categories []Entry `yaml:"categories"`
	Priorities []Entry `yaml:"priorities"`
	Statuses   []Entry `yaml:"statuses"`
}

// Parse builds a catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		types:      raw.Types,
		categories: raw.Categories,
		priorities: raw.Priorities,
		statuses:   raw.Statuses,
	}

	var err error
	if c.byType, err = index("types", raw.Types); err != nil {
		return nil, err
	}
	if c.byCategory, err = index("categories", raw.Categories); err != nil {
		return nil, err
	}
	if c.byPriority, err = index("priorities", raw.Priorities); err != nil {
		return nil, err
	}
	if c.byStatus, err = index("statuses", raw.Statuses); err != nil {
		return nil, err
	}
	return c, nil
}

func index(section string, entries []Entry) (map[string]Entry, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Value == "" {
			return nil, fmt.Errorf("catalog %s: entry without value", section)
		}
		if _, dup := m[e.Value]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate value %q", section, e.Value)
		}
		m[e.Value] = e
	}
	return m, nil
}

var defaultCatalog = MustLoad()

// MustLoad parses the embedded document and panics if it is malformed.
func MustLoad() *Catalog {
	c, err := Parse(document)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the catalog built from the embedded document.
func Default() *Catalog { return defaultCatalog }

// TypeInfo returns the metadata of a report type.
func (c *Catalog) TypeInfo(value string) (Entry, bool) {
	e, ok := c.byType[value]
	return e, ok
}

// CategoryInfo returns the metadata of a category key.
func (c *Catalog) CategoryInfo(value string) (Entry, bool) {
	e, ok := c.byCategory[value]
	return e, ok
}

// PriorityInfo returns the metadata of a priority.
func (c *Catalog) PriorityInfo(value string) (Entry, bool) {
	e, ok := c.byPriority[value]
	return e, ok
}

// StatusInfo returns the metadata of a status.
func (c *Catalog) StatusInfo(value string) (Entry, bool) {
	e, ok := c.byStatus[value]
	return e, ok
}

// IsCategory reports whether key names a known category.
func (c *Catalog) IsCategory(key string) bool {
	_, ok := c.byCategory[key]
	return ok
}

func (c *Catalog) Types() []Entry      { return clone(c.types) }
func (c *Catalog) Categories() []Entry { return clone(c.categories) }
func (c *Catalog) Priorities() []Entry { return clone(c.priorities) }
func (c *Catalog) Statuses() []Entry   { return clone(c.statuses) }

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Snapshot is the JSON shape served to clients.
type Snapshot struct {
	Types      []Entry `json:"types"`
	Categories []Entry `json:"categories"`
	Priorities []Entry `json:"priorities"`
	Statuses   []Entry `json:"statuses"`
}

// Snapshot returns every table in display order.
func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{
		Types:      c.Types(),
		Categories: c.Categories(),
		Priorities: c.Priorities(),
		Statuses:   c.Statuses(),
	}
}
