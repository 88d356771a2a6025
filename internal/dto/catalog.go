package dto

// CategoryInfo is one entry of GET /api/categories.
type CategoryInfo struct {
	Key            string `json:"key"`
	Type           string `json:"type"`
	DisposalMethod string `json:"disposalMethod"`
	Recyclability  int    `json:"recyclability"`
	Classes        []int  `json:"classes"`
}

// CatalogResponse is the body of GET /api/categories.
type CatalogResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Backend    string `json:"backend"`
	Model      string `json:"model"`
	Workers    int    `json:"workers"`
	Categories int    `json:"categories"`
	Classes    int    `json:"classes"`
	Viewers    int    `json:"viewers"`
}
