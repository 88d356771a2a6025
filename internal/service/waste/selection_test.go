package waste

import (
	"testing"
	"wastescanner/internal/model"

	"github.com/stretchr/testify/assert"
)

func resolvedAt(label, key string, confidence float64) Resolved {
	return Resolved{
		Detection: model.Detection{Label: label, Confidence: confidence},
		Key:       key,
		Category:  Category{Type: key},
	}
}

func TestSelect_Empty(t *testing.T) {
	for _, input := range [][]Resolved{nil, {}} {
		res := Select(input)

		assert.False(t, res.Found)
		assert.Equal(t, Category{Type: "Found nothing", DisposalMethod: "N/A", Recyclability: 0}, res.Category)
		assert.Equal(t, "No waste detected in the image", res.Message)
		assert.Zero(t, res.Confidence)
		assert.Empty(t, res.OriginalClass)
	}
}

func TestSelect_MaxConfidence(t *testing.T) {
	res := Select([]Resolved{
		resolvedAt("cup", "glass_bottle", 0.41),
		resolvedAt("bottle", "plastic_bottle", 0.92),
		resolvedAt("apple", "food_waste", 0.77),
	})

	assert.True(t, res.Found)
	assert.Equal(t, "plastic_bottle", res.Key)
	assert.Equal(t, "bottle", res.OriginalClass)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
	assert.Empty(t, res.Message)
}

func TestSelect_TieKeepsFirst(t *testing.T) {
	res := Select([]Resolved{
		resolvedAt("cup", "glass_bottle", 0.3),
		resolvedAt("apple", "food_waste", 0.8),
		resolvedAt("book", "books", 0.8),
	})

	assert.Equal(t, "food_waste", res.Key)
}

func TestSelect_Idempotent(t *testing.T) {
	input := []Resolved{
		resolvedAt("tv", "electronic_waste", 0.5),
		resolvedAt("book", "books", 0.5),
		resolvedAt("cake", "food_waste", 0.2),
	}

	first := Select(input)
	second := Select(input)

	assert.Equal(t, first, second)
	assert.Equal(t, "electronic_waste", first.Key)
}

func TestSelect_MissingLabel(t *testing.T) {
	res := Select([]Resolved{resolvedAt("", "books", 0.6)})

	assert.Equal(t, "unknown", res.OriginalClass)
}
