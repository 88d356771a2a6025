package waste

import (
	"bytes"
	"testing"
	"wastescanner/internal/logger"
	"wastescanner/internal/model"
	"wastescanner/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	r := defaultResolver(t)

	res, ok := r.Resolve(model.Detection{ClassID: 47, Label: "apple", Confidence: 0.8})

	require.True(t, ok)
	assert.Equal(t, "food_waste", res.Key)
	assert.Equal(t, "Food Waste", res.Category.Type)
	assert.Equal(t, "apple", res.Label)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
}

func TestResolver_EveryMappedClassResolvesWithinRange(t *testing.T) {
	r := defaultResolver(t)

	for _, rule := range r.Catalog().Classes() {
		res, ok := r.Resolve(model.Detection{ClassID: rule.ID, Confidence: 0.5})
		require.True(t, ok, "class %d", rule.ID)
		assert.NotEqual(t, FallbackCategory, res.Category)
		assert.GreaterOrEqual(t, res.Category.Recyclability, 0)
		assert.LessOrEqual(t, res.Category.Recyclability, 100)
	}
}

func TestResolver_UnmappedIsLoggedAndCounted(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	var buf bytes.Buffer
	r := NewResolver(catalog, logger.NewWriterLogger(&buf), metrics)

	_, ok := r.Resolve(model.Detection{ClassID: 0, Label: "person", Confidence: 0.99})

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Class ID 0 (person) not mapped to any waste type")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UnmappedClasses.WithLabelValues("person")), 0)
}

func TestResolver_ResolveAllDropsOnlyUnmapped(t *testing.T) {
	r := defaultResolver(t)
	detections := []model.Detection{
		{ClassID: 0, Label: "person", Confidence: 0.9},
		{ClassID: 39, Label: "bottle", Confidence: 0.7},
		{ClassID: 2, Label: "car", Confidence: 0.6},
		{ClassID: 73, Label: "book", Confidence: 0.5},
		{ClassID: 56, Label: "chair", Confidence: 0.4},
	}

	resolved := r.ResolveAll(detections)

	require.Len(t, resolved, len(detections)-3)
	assert.Equal(t, "plastic_bottle", resolved[0].Key)
	assert.Equal(t, "books", resolved[1].Key)

	for n := 0; n <= len(detections); n++ {
		unmapped := append([]model.Detection{}, detections[:2]...)
		for i := 0; i < n; i++ {
			unmapped = append(unmapped, model.Detection{ClassID: 1000 + i})
		}
		assert.Len(t, r.ResolveAll(unmapped), 1, "each unmapped detection removes exactly one entry")
	}
}

func TestResolver_LookupFallback(t *testing.T) {
	r := defaultResolver(t)

	assert.Equal(t, Category{Type: "Glass Bottle", DisposalMethod: "Recycle in blue bin", Recyclability: 95}, r.Lookup("glass_bottle"))
	assert.Equal(t, Category{Type: "Unknown", DisposalMethod: "Check local guidelines", Recyclability: 50}, r.Lookup("styrofoam"))
}
