package request

// CreateRestrictionRequest is the body of POST /api/restrictions.
// BlockedUntil accepts "2006-01-02" or RFC3339.
type CreateRestrictionRequest struct {
	Ticker       string `json:"ticker"`
	BlockedUntil string `json:"blockedUntil"`
}

// SetBrokerSettingsRequest is the body of PUT /api/settings/broker.
type SetBrokerSettingsRequest struct {
	APIKey string `json:"apiKey"`
}
