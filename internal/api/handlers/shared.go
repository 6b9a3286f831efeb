package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// notFoundSentinels are the domain errors that map to 404.
var notFoundSentinels = []error{
	apperrors.ErrPortfolioNotFound,
	apperrors.ErrSleeveNotFound,
	apperrors.ErrSecurityNotFound,
	apperrors.ErrRestrictionNotFound,
	apperrors.ErrReplacementNotFound,
	apperrors.ErrBrokerSettingsNotFound,
}

// respondServiceError maps service-layer errors onto HTTP statuses:
// validation failures become 400 with the field map, missing entities 404,
// rebalance domain errors 422, everything else 500.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	for _, sentinel := range notFoundSentinels {
		if errors.Is(err, sentinel) {
			respondJSON(w, http.StatusNotFound, map[string]string{
				"error":  sentinel.Error(),
				"detail": err.Error(),
			})
			return
		}
	}

	var rebalanceErr *apperrors.RebalanceError
	if errors.As(err, &rebalanceErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":       "rebalance failed",
			"portfolioId": rebalanceErr.PortfolioID,
			"detail":      rebalanceErr.Error(),
		})
		return
	}

	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":  fallback,
		"detail": err.Error(),
	})
}
