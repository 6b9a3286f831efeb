package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/validation"
)

// RestrictionHandler handles wash-sale restriction HTTP requests
type RestrictionHandler struct {
	restrictionService *service.RestrictionService
}

// NewRestrictionHandler creates a new RestrictionHandler
func NewRestrictionHandler(restrictionService *service.RestrictionService) *RestrictionHandler {
	return &RestrictionHandler{
		restrictionService: restrictionService,
	}
}

// Restrictions lists active restrictions: GET /api/restrictions.
func (h *RestrictionHandler) Restrictions(w http.ResponseWriter, r *http.Request) {
	restrictions, err := h.restrictionService.GetActiveRestrictions()
	if err != nil {
		respondServiceError(w, err, "Failed to retrieve restrictions")
		return
	}

	respondJSON(w, http.StatusOK, restrictions)
}

// CreateRestriction records a restriction: POST /api/restrictions.
func (h *RestrictionHandler) CreateRestriction(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateCreateRestriction(req); err != nil {
		respondValidationError(w, err)
		return
	}

	// Validated above; error cannot occur here.
	blockedUntil, _ := validation.ParseDate(req.BlockedUntil)

	restriction, err := h.restrictionService.CreateRestriction(req.Ticker, blockedUntil)
	if err != nil {
		respondServiceError(w, err, "Failed to create restriction")
		return
	}

	respondJSON(w, http.StatusCreated, restriction)
}

// DeleteRestriction removes a restriction: DELETE /api/restrictions/{uuid}.
func (h *RestrictionHandler) DeleteRestriction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	if err := h.restrictionService.DeleteRestriction(id); err != nil {
		respondServiceError(w, err, "Failed to delete restriction")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
