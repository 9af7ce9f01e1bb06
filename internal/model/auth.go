package model

import "time"

type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// LoginCode is the pending one-time code for an email. At most one live
// code exists per email; issuing a new one replaces any prior row.
type LoginCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Session rows store a sha256 hash of the bearer token, never the token itself.
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type RequestCodeResponse struct {
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type AuthMeResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
