package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vet-clinic/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrNotConfigured = errors.New("jwt signing key not configured")
)

// Claims es el payload esperado. La emisión de tokens vive fuera de este servicio.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Verifier implementa auth.AuthVerifier con HS256.
type Verifier struct {
	key    []byte
	issuer string
}

type Option func(*Verifier)

func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = strings.TrimSpace(iss) }
}

func NewVerifier(signingKey string, opts ...Option) *Verifier {
	v := &Verifier{key: []byte(signingKey)}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.key) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	var c Claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, parserOpts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	userID := strings.TrimSpace(c.Subject)
	if userID == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", auth.ErrInvalidToken)
	}

	return auth.Claims{
		UserID: userID,
		Email:  strings.TrimSpace(c.Email),
		Role:   auth.ParseRole(c.Role),
	}, nil
}
