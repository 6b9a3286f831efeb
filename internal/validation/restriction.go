package validation

import (
	"strings"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
)

// ValidateCreateRestriction checks the create-restriction request body.
func ValidateCreateRestriction(req request.CreateRestrictionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	} else if len(req.Ticker) > 20 {
		errors["ticker"] = "ticker must be 20 characters or less"
	}

	if strings.TrimSpace(req.BlockedUntil) == "" {
		errors["blockedUntil"] = "blockedUntil is required"
	} else if _, err := ParseDate(req.BlockedUntil); err != nil {
		errors["blockedUntil"] = "blockedUntil must be a date in YYYY-MM-DD or RFC3339 format"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSetBrokerSettings checks the broker settings request body.
func ValidateSetBrokerSettings(req request.SetBrokerSettingsRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.APIKey) == "" {
		errors["apiKey"] = "apiKey is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
