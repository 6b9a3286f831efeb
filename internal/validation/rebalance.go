package validation

import (
	"strings"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/api/request"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
)

// validMethods lists the accepted rebalance methods.
var validMethods = map[string]bool{
	string(rebalance.MethodAllocation):   true,
	string(rebalance.MethodTLHSwap):      true,
	string(rebalance.MethodTLHRebalance): true,
	string(rebalance.MethodInvestCash):   true,
}

// ValidatePreviewRebalance checks the preview request body. Deep
// validation of the assembled engine input happens inside the engine; this
// rejects what can be rejected before touching the database.
func ValidatePreviewRebalance(req request.PreviewRebalanceRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PortfolioID) == "" {
		errors["portfolioId"] = "portfolioId is required"
	} else if err := ValidateUUID(req.PortfolioID); err != nil {
		errors["portfolioId"] = "portfolioId must be a valid UUID"
	}

	validateMethodFields(req.Method, req.MaxOverinvestmentPercent, req.CashAmount, errors)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidatePreviewAll checks the preview-all request body.
func ValidatePreviewAll(req request.PreviewAllRequest) error {
	errors := make(map[string]string)
	validateMethodFields(req.Method, req.MaxOverinvestmentPercent, req.CashAmount, errors)
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateMethodFields(method string, maxOverPct, cashAmount *float64, errors map[string]string) {
	if method == "" {
		errors["method"] = "method is required"
	} else if !validMethods[method] {
		errors["method"] = "method must be one of allocation, tlhSwap, tlhRebalance, investCash"
	}

	if maxOverPct != nil && (*maxOverPct < 0 || *maxOverPct > 100) {
		errors["maxOverinvestmentPercent"] = "must be between 0 and 100"
	}

	if method == string(rebalance.MethodInvestCash) {
		if cashAmount == nil {
			errors["cashAmount"] = "cashAmount is required for investCash"
		} else if *cashAmount < 0 {
			errors["cashAmount"] = "cashAmount cannot be negative"
		}
	}
}
