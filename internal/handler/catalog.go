package handler

import (
	"net/http"
	"wastescanner/internal/dto"
	"wastescanner/internal/service/waste"
)

// CategoriesHandler serves the active waste catalog with the detector class
// ids that map to each category.
func CategoriesHandler(catalog *waste.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		respondJSON(w, newCatalogResponse(catalog), http.StatusOK)
	}
}

func newCatalogResponse(catalog *waste.Catalog) dto.CatalogResponse {
	classes := make(map[string][]int)
	for _, rule := range catalog.Classes() {
		classes[rule.Category] = append(classes[rule.Category], rule.ID)
	}

	keys := catalog.Keys()
	resp := dto.CatalogResponse{Categories: make([]dto.CategoryInfo, 0, len(keys))}
	for _, key := range keys {
		category, _ := catalog.Category(key)
		ids := classes[key]
		if ids == nil {
			ids = []int{}
		}
		resp.Categories = append(resp.Categories, dto.CategoryInfo{
			Key:            key,
			Type:           category.Type,
			DisposalMethod: category.DisposalMethod,
			Recyclability:  category.Recyclability,
			Classes:        ids,
		})
	}
	return resp
}
