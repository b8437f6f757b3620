package handler

import (
	"net/http"

	"cares/internal/catalog"
)

// CatalogHandler serves the questionnaire definition
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

type catalogResponse struct {
	Questions     []catalog.Question     `json:"questions"`
	Options       []catalog.Option       `json:"options"`
	PillarWeights []catalog.PillarWeight `json:"pillar_weights"`
}

// Questions handles GET /questions
func (h *CatalogHandler) Questions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Questions:     h.catalog.Questions(),
		Options:       h.catalog.Options(),
		PillarWeights: h.catalog.Pillars(),
	})
}
