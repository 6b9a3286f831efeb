package model

import "time"

// Transaction represents a buy or sell transaction for a portfolio
// security. Recent sells feed the wash-sale restriction derivation.
type Transaction struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	Ticker      string    `json:"ticker"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Shares      float64   `json:"shares"`
	PricePS     float64   `json:"pricePerShare"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
