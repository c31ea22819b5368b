// Package tags holds the category catalog and the line matcher.
//
// A Catalog is an ordered list of categories. Its order is stable and defines
// the index that ties a category to its entry in a ColorTable. A FilterSet is
// an ordered selection of catalog indices; the empty set selects the whole
// catalog.
package tags

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// FallbackColor is used for every category without an explicit color.
const FallbackColor = "#FF000000"

// Category is one entry of the catalog. Tag is the substring looked up in a
// line; Name is how configuration refers to it.
type Category struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Tag  string `toml:"tag" yaml:"tag" json:"tag"`
}

// Catalog is the fixed, ordered set of known categories.
type Catalog []Category

// DefaultCatalog matches logcat priorities as printed by `logcat -v time`.
var DefaultCatalog = Catalog{
	{Name: "VERBOSE", Tag: "V/"},
	{Name: "DEBUG", Tag: "D/"},
	{Name: "INFO", Tag: "I/"},
	{Name: "WARN", Tag: "W/"},
	{Name: "ERROR", Tag: "E/"},
	{Name: "ASSERT", Tag: "A/"},
}

// Named builds a catalog whose tags equal their names.
func Named(names ...string) Catalog {
	c := make(Catalog, 0, len(names))
	for _, n := range names {
		c = append(c, Category{Name: n, Tag: n})
	}
	return c
}

// Validate rejects empty tags and duplicate names.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return errors.New("catalog is empty")
	}
	seen := make(map[string]struct{}, len(c))
	for i, cat := range c {
		if cat.Tag == "" {
			return errors.Newf("category %d (%q) has an empty tag", i, cat.Name)
		}
		if _, ok := seen[cat.Name]; ok {
			return errors.Newf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = struct{}{}
	}
	return nil
}

// Index returns the position of the category called name, matching either
// its Name or its Tag.
func (c Catalog) Index(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, cat := range c {
		if cat.Name == name || cat.Tag == name {
			return i, true
		}
	}
	return -1, false
}

// FilterSet is an ordered selection of catalog indices. Empty means all.
type FilterSet []int

// Resolve turns configured names into a FilterSet, keeping their order.
// Unknown names are an error; repeated names are kept once.
func (c Catalog) Resolve(names ...string) (FilterSet, error) {
	if len(names) == 0 {
		return nil, nil
	}
	set := make(FilterSet, 0, len(names))
	seen := make(map[int]struct{}, len(names))
	for _, name := range names {
		idx, ok := c.Index(name)
		if !ok {
			return nil, errors.Newf("unknown category %q", name)
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		set = append(set, idx)
	}
	return set, nil
}

// Names returns the category names selected by f, or every name when f is
// empty.
func (c Catalog) Names(f FilterSet) []string {
	if len(f) == 0 {
		out := make([]string, len(c))
		for i, cat := range c {
			out[i] = cat.Name
		}
		return out
	}
	out := make([]string, 0, len(f))
	for _, idx := range f {
		out = append(out, c[idx].Name)
	}
	return out
}

// Match returns the catalog index of the first category whose tag occurs in
// line. An empty filter walks the catalog in catalog order; otherwise the
// filter is walked in its own order.
func Match(line string, c Catalog, f FilterSet) (int, bool) {
	if len(f) == 0 {
		for i, cat := range c {
			if strings.Contains(line, cat.Tag) {
				return i, true
			}
		}
		return -1, false
	}
	for _, idx := range f {
		if strings.Contains(line, c[idx].Tag) {
			return idx, true
		}
	}
	return -1, false
}

// ColorTable maps catalog index to display color. Its length always equals
// the catalog length.
type ColorTable []string

// NewColorTable index-aligns colors to the catalog, padding missing and
// blank entries with FallbackColor.
func NewColorTable(c Catalog, colors ...string) (ColorTable, error) {
	if len(colors) > len(c) {
		return nil, errors.Newf("%d colors given for %d categories", len(colors), len(c))
	}
	table := make(ColorTable, len(c))
	for i := range table {
		table[i] = FallbackColor
		if i < len(colors) {
			if color := strings.TrimSpace(colors[i]); color != "" {
				table[i] = color
			}
		}
	}
	return table, nil
}

// Color returns the color for idx, or FallbackColor when out of range.
func (t ColorTable) Color(idx int) string {
	if idx < 0 || idx >= len(t) {
		return FallbackColor
	}
	return t[idx]
}
