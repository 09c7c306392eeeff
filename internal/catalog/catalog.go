// Package catalog loads the ordered list of decision items shown to every
// participant. A catalog is read-only once built.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"frictionstudy/internal/model"
)

var ErrEmptyCatalog = errors.New("catalog: no items")

// Catalog is an immutable, ordered set of items
type Catalog struct {
	items []model.Item
	index map[int]int
}

// New validates items and builds a catalog. Order is preserved.
func New(items []model.Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		items: make([]model.Item, len(items)),
		index: make(map[int]int, len(items)),
	}
	copy(c.items, items)
	for i, item := range c.items {
		if _, dup := c.index[item.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate item id %d", item.ID)
		}
		if strings.TrimSpace(item.Text) == "" {
			return nil, fmt.Errorf("catalog: item %d has no text", item.ID)
		}
		if !item.AISuggestion.Valid() {
			return nil, fmt.Errorf("catalog: item %d has unknown suggestion %q", item.ID, item.AISuggestion)
		}
		c.index[item.ID] = i
	}
	return c, nil
}

// Load reads a catalog from a .json, .yaml or .yml file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var doc struct {
		Items []model.Item `json:"items" yaml:"items"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("catalog: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(doc.Items)
}

// Len returns the number of items
func (c *Catalog) Len() int { return len(c.items) }

// At returns the item at position i
func (c *Catalog) At(i int) (model.Item, bool) {
	if i < 0 || i >= len(c.items) {
		return model.Item{}, false
	}
	return c.items[i], true
}

// Position returns the catalog position of an item id
func (c *Catalog) Position(id int) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// IDs returns item ids in catalog order
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.items))
	for i, item := range c.items {
		ids[i] = item.ID
	}
	return ids
}

// Items returns a copy of the items in order
func (c *Catalog) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}
