package model

import "time"

// WashSaleRestriction blocks purchases of a ticker until BlockedUntil.
// Records are created by the restriction tracker after realized-loss sells
// and swept once expired.
type WashSaleRestriction struct {
	ID           string    `json:"id"`
	Ticker       string    `json:"ticker"`
	BlockedUntil time.Time `json:"blockedUntil"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// SecurityReplacement maps a ticker to its approved tax-loss-harvesting
// replacement. The mapping is one-to-one static configuration.
type SecurityReplacement struct {
	ID                string `json:"id"`
	OriginalTicker    string `json:"originalTicker"`
	ReplacementTicker string `json:"replacementTicker"`
}
