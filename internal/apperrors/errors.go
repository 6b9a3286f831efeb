package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrSleeveNotFound indicates that a sleeve with the given ID does not exist.
	ErrSleeveNotFound = errors.New("sleeve not found")

	// ErrSecurityNotFound indicates that a security with the given ID does not exist.
	ErrSecurityNotFound = errors.New("security not found")

	// ErrRestrictionNotFound indicates that a wash-sale restriction record does not exist.
	ErrRestrictionNotFound = errors.New("restriction not found")

	// ErrReplacementNotFound indicates that a replacement-candidate mapping does not exist.
	ErrReplacementNotFound = errors.New("replacement candidate not found")

	// ErrBrokerSettingsNotFound indicates broker settings have not been configured.
	ErrBrokerSettingsNotFound = errors.New("broker settings not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// ValidationError reports bad or missing input, keyed by field name.
// Validation failures are raised immediately and are never retried.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RebalanceError wraps any non-validation failure raised while computing a
// rebalance, carrying the portfolio id and the original cause.
type RebalanceError struct {
	PortfolioID string
	Err         error
}

func (e *RebalanceError) Error() string {
	return fmt.Sprintf("rebalance failed for portfolio %s: %v", e.PortfolioID, e.Err)
}

func (e *RebalanceError) Unwrap() error {
	return e.Err
}

// NewRebalanceError wraps cause with the portfolio id.
func NewRebalanceError(portfolioID string, cause error) *RebalanceError {
	return &RebalanceError{PortfolioID: portfolioID, Err: cause}
}
