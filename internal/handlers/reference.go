package handlers

import (
	"net/http"

	"github.com/switch2connect/switch2connect/internal/models"
)

// ReferenceHandler serves the static pick lists the registration and
// profile forms are built from.
type ReferenceHandler struct{}

func NewReferenceHandler() *ReferenceHandler {
	return &ReferenceHandler{}
}

type ReferenceResponse struct {
	Games                 []string                     `json:"games"`
	Regions               []string                     `json:"regions"`
	AgeGroups             []models.AgeGroup            `json:"age_groups"`
	CommunityCategories   []models.CommunityCategory   `json:"community_categories"`
	MarketplaceCategories []models.MarketplaceCategory `json:"marketplace_categories"`
}

func (h *ReferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ReferenceResponse{
		Games:                 models.NintendoGames,
		Regions:               models.Regions,
		AgeGroups:             models.AgeGroups,
		CommunityCategories:   models.CommunityCategories,
		MarketplaceCategories: models.MarketplaceCategories,
	})
}
