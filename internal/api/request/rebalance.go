package request

// PreviewRebalanceRequest is the body of POST /api/rebalance/preview.
type PreviewRebalanceRequest struct {
	PortfolioID              string   `json:"portfolioId"`
	Method                   string   `json:"method"`
	AllowOverinvestment      bool     `json:"allowOverinvestment"`
	MaxOverinvestmentPercent *float64 `json:"maxOverinvestmentPercent,omitempty"`
	CashAmount               *float64 `json:"cashAmount,omitempty"`
}

// PreviewAllRequest is the body of POST /api/rebalance/preview-all.
type PreviewAllRequest struct {
	Method                   string   `json:"method"`
	AllowOverinvestment      bool     `json:"allowOverinvestment"`
	MaxOverinvestmentPercent *float64 `json:"maxOverinvestmentPercent,omitempty"`
	CashAmount               *float64 `json:"cashAmount,omitempty"`
}
