// Package waste resolves detector classes to waste categories and picks the
// result returned to callers.
package waste

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Category describes how one kind of waste is disposed of.
type Category struct {
	Type           string `yaml:"type" json:"type"`
	DisposalMethod string `yaml:"disposalMethod" json:"disposalMethod"`
	Recyclability  int    `yaml:"recyclability" json:"recyclability"`
}

var (
	// FallbackCategory is returned for category keys missing from the catalog.
	FallbackCategory = Category{Type: "Unknown", DisposalMethod: "Check local guidelines", Recyclability: 50}
	// NothingFound is the category reported when no detection could be resolved.
	NothingFound = Category{Type: "Found nothing", DisposalMethod: "N/A", Recyclability: 0}
)

// ClassRule maps one detector class id to a category key.
type ClassRule struct {
	ID       int    `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
}

type catalogFile struct {
	Categories map[string]Category `yaml:"categories"`
	Classes    []ClassRule         `yaml:"classes"`
}

// Catalog holds the class mapping and the category table. It is immutable
// once built and safe for concurrent use.
type Catalog struct {
	classes    map[int]string
	categories map[string]Category
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile reads a catalog from a YAML file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog decodes a YAML catalog and validates it with NewCatalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewCatalog(file.Classes, file.Categories)
}

// NewCatalog validates and copies the given tables. A class id listed twice,
// a class pointing at an unknown category, or a recyclability outside 0..100
// is an error.
func NewCatalog(classes []ClassRule, categories map[string]Category) (*Catalog, error) {
	c := &Catalog{
		classes:    make(map[int]string, len(classes)),
		categories: make(map[string]Category, len(categories)),
	}

	var errs []error
	for key, cat := range categories {
		switch {
		case key == "":
			errs = append(errs, errors.New("category with empty key"))
		case cat.Type == "":
			errs = append(errs, fmt.Errorf("category %q has no type", key))
		case cat.Recyclability < 0 || cat.Recyclability > 100:
			errs = append(errs, fmt.Errorf("category %q recyclability %d outside 0..100", key, cat.Recyclability))
		}
		c.categories[key] = cat
	}

	for _, rule := range classes {
		if rule.ID < 0 {
			errs = append(errs, fmt.Errorf("class id %d is negative", rule.ID))
			continue
		}
		if prev, dup := c.classes[rule.ID]; dup {
			errs = append(errs, fmt.Errorf("class %d mapped twice (%s, %s)", rule.ID, prev, rule.Category))
			continue
		}
		if _, ok := categories[rule.Category]; !ok {
			errs = append(errs, fmt.Errorf("class %d refers to unknown category %q", rule.ID, rule.Category))
			continue
		}
		c.classes[rule.ID] = rule.Category
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

// CategoryKey returns the category key for a class id.
func (c *Catalog) CategoryKey(classID int) (string, bool) {
	key, ok := c.classes[classID]
	return key, ok
}

// Category returns the record stored under key.
func (c *Catalog) Category(key string) (Category, bool) {
	cat, ok := c.categories[key]
	return cat, ok
}

// Keys returns the category keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.categories))
	for key := range c.categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Classes returns the class mapping ordered by class id.
func (c *Catalog) Classes() []ClassRule {
	rules := make([]ClassRule, 0, len(c.classes))
	for id, key := range c.classes {
		rules = append(rules, ClassRule{ID: id, Category: key})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}
