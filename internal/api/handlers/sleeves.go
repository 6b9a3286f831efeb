package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/validation"
)

// SleeveHandler handles sleeve-related HTTP requests
type SleeveHandler struct {
	sleeveService *service.SleeveService
}

// NewSleeveHandler creates a new SleeveHandler
func NewSleeveHandler(sleeveService *service.SleeveService) *SleeveHandler {
	return &SleeveHandler{
		sleeveService: sleeveService,
	}
}

// Sleeves lists a portfolio's sleeves with their securities:
// GET /api/sleeves?portfolioId=.
func (h *SleeveHandler) Sleeves(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.URL.Query().Get("portfolioId")
	if err := validation.ValidateUUID(portfolioID); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "portfolioId query parameter must be a valid UUID",
			"detail": err.Error(),
		})
		return
	}

	sleeves, err := h.sleeveService.GetSleeves(portfolioID)
	if err != nil {
		respondServiceError(w, err, "Failed to retrieve sleeves")
		return
	}

	respondJSON(w, http.StatusOK, sleeves)
}

// CreateSleeve creates a sleeve: POST /api/sleeves.
func (h *SleeveHandler) CreateSleeve(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSleeveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateCreateSleeve(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sleeve, err := h.sleeveService.CreateSleeve(req.PortfolioID, req.Name, req.TargetPct, req.IsCash)
	if err != nil {
		respondServiceError(w, err, "Failed to create sleeve")
		return
	}

	respondJSON(w, http.StatusCreated, sleeve)
}

// SetSleeveSecurity adds or updates a sleeve's security assignment:
// POST /api/sleeves/{uuid}/securities.
func (h *SleeveHandler) SetSleeveSecurity(w http.ResponseWriter, r *http.Request) {
	sleeveID := chi.URLParam(r, "uuid")

	var req request.SetSleeveSecurityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateSetSleeveSecurity(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rank := rebalance.DefaultRank
	if req.Rank != nil {
		rank = *req.Rank
	}

	sec, err := h.sleeveService.SetSleeveSecurity(sleeveID, req.SecurityID, rank, req.TargetPct, req.IsLegacy)
	if err != nil {
		respondServiceError(w, err, "Failed to set sleeve security")
		return
	}

	respondJSON(w, http.StatusOK, sec)
}
