package model

// Sleeve is a named group of interchangeable securities within a portfolio.
// TargetPct is the sleeve's share of total portfolio value; a sleeve with
// IsCash set supplies the cash ledger during rebalancing.
type Sleeve struct {
	ID          string  `json:"id"`
	PortfolioID string  `json:"portfolioId"`
	Name        string  `json:"name"`
	TargetPct   float64 `json:"targetPct"`
	IsCash      bool    `json:"isCash"`
}

// SleeveSecurity assigns a security to a sleeve with its purchase rank
// (lower = preferred) and per-security target percentage used by the flat
// rebalancer. IsLegacy marks grandfathered holdings with sell-avoidance
// rules.
type SleeveSecurity struct {
	ID         string  `json:"id"`
	SleeveID   string  `json:"sleeveId"`
	SecurityID string  `json:"securityId"`
	Rank       int     `json:"rank"`
	TargetPct  float64 `json:"targetPct"`
	IsLegacy   bool    `json:"isLegacy"`
}

// SleeveWithSecurities bundles a sleeve with its security assignments for
// API responses and engine input assembly.
type SleeveWithSecurities struct {
	Sleeve
	Securities []SleeveSecurity `json:"securities"`
}
