package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	DisplayName string     `json:"display_name" validate:"required"`
	Department  Department `json:"department" validate:"required,oneof=frontend backend sales hr product"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token alongside the user it identifies.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Claims is the JWT payload for access tokens: a minimal snapshot of
// identity state at issuance time. Claims are not re-checked against the
// live user record until the token is next exchanged for /auth/me.
type Claims struct {
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
	jwt.RegisteredClaims
}
