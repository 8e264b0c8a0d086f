package auth

import "time"

// TokenResponse is the wire format returned by the OAuth token endpoint.
// expires_in is relative seconds; it is converted to an absolute expiry
// before persistence.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// StoredToken is the persisted credential record. It is replaced wholesale
// on every successful exchange or refresh; ExpiresAt and StoredAt are epoch
// milliseconds.
type StoredToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	TokenType    string `json:"tokenType"`
	StoredAt     int64  `json:"storedAt"`
}

// ExpiryTime returns the absolute expiry as a time.Time.
func (t *StoredToken) ExpiryTime() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// Status is a derived, read-only view of the stored token, computed on
// demand and never persisted. ExpiresIn is always recomputed from ExpiresAt
// and the current time.
type Status struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsExpired       bool   `json:"isExpired"`
	ExpiresAt       string `json:"expiresAt,omitempty"`
	ExpiresIn       int64  `json:"expiresIn,omitempty"`
}
