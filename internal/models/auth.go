package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the JWT claims issued for authenticated sessions.
type TokenClaims struct {
	Type   string `json:"type"` // "access" or "refresh"
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
