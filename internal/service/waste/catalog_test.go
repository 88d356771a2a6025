package waste

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"books", "cardboard", "electronic_waste", "food_waste", "glass_bottle", "plastic_bottle"}, catalog.Keys())

	key, ok := catalog.CategoryKey(39)
	require.True(t, ok)
	assert.Equal(t, "plastic_bottle", key)

	cat, ok := catalog.Category(key)
	require.True(t, ok)
	assert.Equal(t, Category{Type: "Plastic Bottle", DisposalMethod: "Recycle in blue bin", Recyclability: 85}, cat)

	key, ok = catalog.CategoryKey(73)
	require.True(t, ok)
	assert.Equal(t, "books", key)

	_, ok = catalog.CategoryKey(0)
	assert.False(t, ok, "person is not waste")
}

func TestDefaultCatalog_UnmappedLegacyIDs(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	for _, id := range []int{44, 72, 76, 77, 84, 86} {
		_, ok := catalog.CategoryKey(id)
		assert.False(t, ok, "class %d", id)
	}
}

func TestDefaultCatalog_EveryMappedClassHasValidCategory(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	rules := catalog.Classes()
	require.NotEmpty(t, rules)

	for i, rule := range rules {
		if i > 0 {
			assert.Less(t, rules[i-1].ID, rule.ID, "classes must be ordered by id")
		}
		cat, ok := catalog.Category(rule.Category)
		require.True(t, ok, "class %d points at missing category %q", rule.ID, rule.Category)
		assert.GreaterOrEqual(t, cat.Recyclability, 0)
		assert.LessOrEqual(t, cat.Recyclability, 100)
	}
}

func TestNewCatalog_RejectsDuplicateClass(t *testing.T) {
	categories := map[string]Category{
		"electronic_waste": {Type: "Electronic Waste", DisposalMethod: "E-waste point", Recyclability: 70},
		"books":            {Type: "Books & Paper", DisposalMethod: "Compost in green bin", Recyclability: 100},
	}

	_, err := NewCatalog([]ClassRule{
		{ID: 73, Category: "electronic_waste"},
		{ID: 73, Category: "books"},
	}, categories)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "class 73 mapped twice (electronic_waste, books)")
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name       string
		classes    []ClassRule
		categories map[string]Category
		want       string
	}{
		{
			name:       "unknown category",
			classes:    []ClassRule{{ID: 1, Category: "metal"}},
			categories: map[string]Category{"glass": {Type: "Glass", Recyclability: 95}},
			want:       `unknown category "metal"`,
		},
		{
			name:       "recyclability above range",
			categories: map[string]Category{"glass": {Type: "Glass", Recyclability: 101}},
			want:       "outside 0..100",
		},
		{
			name:       "recyclability below range",
			categories: map[string]Category{"glass": {Type: "Glass", Recyclability: -1}},
			want:       "outside 0..100",
		},
		{
			name:       "missing type",
			categories: map[string]Category{"glass": {Recyclability: 10}},
			want:       "has no type",
		},
		{
			name:       "negative class",
			classes:    []ClassRule{{ID: -3, Category: "glass"}},
			categories: map[string]Category{"glass": {Type: "Glass"}},
			want:       "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.classes, tt.categories)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
categories:
  metal_can:
    type: Metal Can
    disposalMethod: Rinse and recycle
    recyclability: 95
classes:
  - id: 2
    category: metal_can
  - id: 5
    category: metal_can
`))
	require.NoError(t, err)

	assert.Equal(t, []ClassRule{{ID: 2, Category: "metal_can"}, {ID: 5, Category: "metal_can"}}, catalog.Classes())
}

func TestParseCatalog_DuplicateCategoryKey(t *testing.T) {
	_, err := ParseCatalog([]byte(`
categories:
  glass: {type: Glass, disposalMethod: Blue bin, recyclability: 95}
  glass: {type: Glass 2, disposalMethod: Blue bin, recyclability: 90}
`))
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  paper: {type: Paper, disposalMethod: Blue bin, recyclability: 80}\nclasses:\n  - {id: 3, category: paper}\n"), 0644))

	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)
	key, ok := catalog.CategoryKey(3)
	assert.True(t, ok)
	assert.Equal(t, "paper", key)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
