package dto

import "time"

// TokenResponse is the payload returned on issuance and refresh.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionResponse describes the current authenticated session.
type SessionResponse struct {
	Subject    string    `json:"subject"`
	Name       string    `json:"name"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	RedirectTo string    `json:"redirectTo,omitempty"`
}
