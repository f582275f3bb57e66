package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenRequest holds operator credentials.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for operator tokens.
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
