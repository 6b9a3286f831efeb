package validation

import (
	"strings"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
)

// ValidateCreateSleeve checks the create-sleeve request body.
func ValidateCreateSleeve(req request.CreateSleeveRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PortfolioID) == "" {
		errors["portfolioId"] = "portfolioId is required"
	} else if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = "portfolioId must be a valid UUID"
	}

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if req.TargetPct < 0 || req.TargetPct > 100 {
		errors["targetPct"] = "targetPct must be between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateSetSleeveSecurity checks the sleeve-security request body.
func ValidateSetSleeveSecurity(req request.SetSleeveSecurityRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.SecurityID) == "" {
		errors["securityId"] = "securityId is required"
	} else if len(req.SecurityID) > 20 {
		errors["securityId"] = "securityId must be 20 characters or less"
	}

	if req.Rank != nil && *req.Rank < 0 {
		errors["rank"] = "rank cannot be negative"
	}

	if req.TargetPct < 0 || req.TargetPct > 100 {
		errors["targetPct"] = "targetPct must be between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
