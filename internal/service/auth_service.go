package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"frictionstudy/internal/clock"
	"frictionstudy/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues the tokens that tie a browser to one session.
// There are no accounts: the token only proves which session is speaking.
type AuthService struct {
	jwtSecret []byte
	ttl       time.Duration
	clock     clock.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		ttl:       ttl,
		clock:     clock.Real(),
	}
}

// SetClock replaces the clock expiry is checked against. Tokens must be
// validated on the same clock they were issued on.
func (s *AuthService) SetClock(c clock.Clock) {
	s.clock = c
}

// IssueSessionToken creates a token scoped to sessionID
func (s *AuthService) IssueSessionToken(sessionID string, now time.Time) (string, error) {
	claims := &model.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken validates a session JWT and returns claims
func (s *AuthService) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
