package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"frictionstudy/internal/clock"
	"frictionstudy/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)
	token, err := auth.IssueSessionToken("session-1", time.Now())
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	claims, err := auth.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Fatalf("expected session-1, got %s", claims.SessionID)
	}
}

func TestSessionTokenRejected(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)

	expired, err := auth.IssueSessionToken("session-1", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	other, err := NewAuthService("other-secret", time.Hour).IssueSessionToken("session-1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &model.SessionClaims{SessionID: "session-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := auth.IssueSessionToken("", time.Now())
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"alg none":     unsigned,
		"no session":   empty,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := auth.ValidateSessionToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSessionTokenExpiryFollowsClock(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	auth := NewAuthService("secret", time.Hour)
	auth.SetClock(fake)

	token, err := auth.IssueSessionToken("session-1", fake.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateSessionToken(token); err != nil {
		t.Fatalf("token rejected on the clock it was issued on: %v", err)
	}

	fake.Advance(59 * time.Minute)
	if _, err := auth.ValidateSessionToken(token); err != nil {
		t.Fatalf("token rejected before its ttl: %v", err)
	}
	fake.Advance(2 * time.Minute)
	if _, err := auth.ValidateSessionToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry after the ttl, got %v", err)
	}
}
