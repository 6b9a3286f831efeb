package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/validation"
)

// RebalanceHandler handles rebalance preview HTTP requests
type RebalanceHandler struct {
	rebalanceService *service.RebalanceService
}

// NewRebalanceHandler creates a new RebalanceHandler
func NewRebalanceHandler(rebalanceService *service.RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{
		rebalanceService: rebalanceService,
	}
}

// Preview computes the trade list for one portfolio without executing
// anything: POST /api/rebalance/preview.
func (h *RebalanceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req request.PreviewRebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidatePreviewRebalance(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.rebalanceService.Preview(req.PortfolioID, service.PreviewOptions{
		Method:                   rebalance.Method(req.Method),
		AllowOverinvestment:      req.AllowOverinvestment,
		MaxOverinvestmentPercent: req.MaxOverinvestmentPercent,
		CashAmount:               req.CashAmount,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to compute rebalance preview")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// PreviewAll computes previews for every active portfolio:
// POST /api/rebalance/preview-all.
func (h *RebalanceHandler) PreviewAll(w http.ResponseWriter, r *http.Request) {
	var req request.PreviewAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidatePreviewAll(req); err != nil {
		respondValidationError(w, err)
		return
	}

	previews, err := h.rebalanceService.PreviewAll(r.Context(), service.PreviewOptions{
		Method:                   rebalance.Method(req.Method),
		AllowOverinvestment:      req.AllowOverinvestment,
		MaxOverinvestmentPercent: req.MaxOverinvestmentPercent,
		CashAmount:               req.CashAmount,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to compute rebalance previews")
		return
	}

	respondJSON(w, http.StatusOK, previews)
}

// respondValidationError renders a request-validation failure as 400 with
// the per-field messages.
func respondValidationError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}
	respondJSON(w, http.StatusBadRequest, map[string]string{
		"error":  "validation failed",
		"detail": err.Error(),
	})
}
