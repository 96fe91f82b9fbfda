package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/switch2connect/switch2connect/internal/models"
	"github.com/switch2connect/switch2connect/internal/services"
)

type CommunityHandler struct {
	communityService services.CommunityServiceInterface
}

func NewCommunityHandler(communityService services.CommunityServiceInterface) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

type CommunityListResponse struct {
	Communities []models.Community `json:"communities"`
}

type CommunityResponse struct {
	Community *models.Community `json:"community"`
}

func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	params := services.CommunityListParams{}
	if category := r.URL.Query().Get("category"); category != "" {
		c := models.CommunityCategory(category)
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		params.Category = c
	}

	communities, err := h.communityService.List(r.Context(), params)
	if err != nil {
		log.Printf("Error listing communities: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CommunityListResponse{Communities: communities})
}

func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid community ID")
		return
	}

	community, err := h.communityService.GetByID(r.Context(), id)
	if errors.Is(err, services.ErrCommunityNotFound) {
		writeError(w, http.StatusNotFound, "Community not found")
		return
	}
	if err != nil {
		log.Printf("Error getting community: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CommunityResponse{Community: community})
}
