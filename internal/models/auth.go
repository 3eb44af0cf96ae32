package models

import "github.com/golang-jwt/jwt/v5"

// UserRole names the role carried in an access token.
type UserRole string

// Roles recognised by the API.
const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAdviser UserRole = "ADVISER"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens. Student tokens carry the student ID as UserID.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
