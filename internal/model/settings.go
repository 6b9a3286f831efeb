package model

import "time"

// BrokerSettings holds the credentials the order-submission layer uses to
// reach the brokerage. The API key is stored fernet-encrypted; APIKey here
// carries the plaintext only between service and caller.
type BrokerSettings struct {
	ID        string    `json:"id"`
	APIKey    string    `json:"apiKey,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
