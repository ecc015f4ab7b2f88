package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the payload of access tokens issued by the external
// identity service. This service only verifies them.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}
