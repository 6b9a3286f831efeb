package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/validation"
)

// SettingsHandler handles broker settings HTTP requests
type SettingsHandler struct {
	brokerSettingsService *service.BrokerSettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(brokerSettingsService *service.BrokerSettingsService) *SettingsHandler {
	return &SettingsHandler{
		brokerSettingsService: brokerSettingsService,
	}
}

// SetBroker stores the brokerage API key: PUT /api/settings/broker.
// The key is encrypted at rest and never echoed back.
func (h *SettingsHandler) SetBroker(w http.ResponseWriter, r *http.Request) {
	var req request.SetBrokerSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateSetBrokerSettings(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.brokerSettingsService.SetAPIKey(req.APIKey); err != nil {
		respondServiceError(w, err, "Failed to store broker settings")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
