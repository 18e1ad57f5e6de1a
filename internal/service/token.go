package service

import (
	"errors"
	"time"

	"toolforge-rest-api/internal/model"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken covers every verification failure: bad signature, expiry,
// malformed input. Callers never learn which.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues and verifies signed bearer credentials carrying a
// single claim (subject email). Purely functional given the secret; there
// is no refresh or revocation state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret.
// A zero ttl falls back to DefaultTokenTTL; any other value is used as
// given, so issued tokens expire exactly when the caller says.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token for the given email.
func (s *TokenService) Issue(email string) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}

	now := time.Now().UTC()
	claims := model.AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the subject email.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &model.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
