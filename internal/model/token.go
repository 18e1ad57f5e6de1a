package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the full claim set of a bearer credential. Email is the
// sole custom claim.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
