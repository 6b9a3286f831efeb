package model

// Position is one account's holding of a security, as last synced from the
// holdings service. Price is the latest known quote; UnrealizedGain is nil
// when no cost-basis data exists for the lot.
type Position struct {
	ID             string   `json:"id"`
	PortfolioID    string   `json:"portfolioId"`
	AccountID      string   `json:"accountId"`
	SecurityID     string   `json:"securityId"`
	Qty            float64  `json:"qty"`
	Price          float64  `json:"price"`
	IsTaxable      bool     `json:"isTaxable"`
	UnrealizedGain *float64 `json:"unrealizedGain,omitempty"`
}

// MarketValue returns the position's current market value.
func (p Position) MarketValue() float64 {
	return p.Qty * p.Price
}
