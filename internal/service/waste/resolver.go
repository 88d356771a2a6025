package waste

import (
	"wastescanner/internal/logger"
	"wastescanner/internal/model"
	"wastescanner/internal/observability"
)

// Resolved is a detection whose class maps to a waste category.
type Resolved struct {
	model.Detection
	Key      string
	Category Category
}

// Resolver maps detections to waste categories using a Catalog.
type Resolver struct {
	catalog *Catalog
	logger  *logger.Logger
	metrics *observability.Metrics
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(catalog *Catalog, logger *logger.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// WithLogger returns a Resolver sharing the catalog that logs to l.
func (r *Resolver) WithLogger(l *logger.Logger) *Resolver {
	derived := *r
	derived.logger = l
	return &derived
}

// Catalog returns the catalog used for resolution.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Lookup returns the category stored under key, or FallbackCategory.
func (r *Resolver) Lookup(key string) Category {
	if cat, ok := r.catalog.Category(key); ok {
		return cat
	}
	return FallbackCategory
}

// Resolve maps one detection. Unmapped classes are not an error: they are
// logged and reported with ok == false.
func (r *Resolver) Resolve(d model.Detection) (Resolved, bool) {
	key, ok := r.catalog.CategoryKey(d.ClassID)
	if !ok {
		r.logger.Info("Class ID %d (%s) not mapped to any waste type", d.ClassID, d.Label)
		r.metrics.RecordUnmapped(d.Label)
		return Resolved{}, false
	}

	r.metrics.RecordMapped(key)
	return Resolved{
		Detection: d,
		Key:       key,
		Category:  r.Lookup(key),
	}, true
}

// ResolveAll resolves every detection, keeping input order and dropping the
// unmapped ones.
func (r *Resolver) ResolveAll(detections []model.Detection) []Resolved {
	resolved := make([]Resolved, 0, len(detections))
	for _, d := range detections {
		if res, ok := r.Resolve(d); ok {
			resolved = append(resolved, res)
		}
	}
	return resolved
}
