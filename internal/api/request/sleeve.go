package request

// CreateSleeveRequest is the body of POST /api/sleeves.
type CreateSleeveRequest struct {
	PortfolioID string  `json:"portfolioId"`
	Name        string  `json:"name"`
	TargetPct   float64 `json:"targetPct"`
	IsCash      bool    `json:"isCash"`
}

// SetSleeveSecurityRequest is the body of POST /api/sleeves/{uuid}/securities.
type SetSleeveSecurityRequest struct {
	SecurityID string  `json:"securityId"`
	Rank       *int    `json:"rank,omitempty"`
	TargetPct  float64 `json:"targetPct"`
	IsLegacy   bool    `json:"isLegacy"`
}
