package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"instaclone/internal/domain"
)

func TestSessionService_IssueParse(t *testing.T) {
	svc := NewSessionService("secret", 24*time.Hour)
	user := domain.User{ID: "u1", Username: "alice"}

	token, expiresAt, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if d := time.Until(expiresAt); d < 23*time.Hour || d > 25*time.Hour {
		t.Fatalf("expected ~24h expiry, got %v", d)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSessionService_Expired(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	token, _, err := svc.Issue(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	if _, err := svc.Parse(token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionService_RejectsEmptySecret(t *testing.T) {
	svc := NewSessionService("", time.Hour)
	if _, _, err := svc.Issue(domain.User{ID: "u1"}); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid on empty secret, got %v", err)
	}
}

func TestSessionService_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewSessionService("secret-a", time.Hour).Issue(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewSessionService("secret-b", time.Hour).Parse(token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for foreign signature, got %v", err)
	}
}

func TestSessionService_RejectsGarbage(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	for _, token := range []string{"", "   ", "not-a-jwt"} {
		if _, err := svc.Parse(token); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("expected ErrSessionInvalid for %q, got %v", token, err)
		}
	}
}

func TestSessionService_RejectsWrongIssuer(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	now := time.Now().UTC()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Parse(signed); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for wrong issuer, got %v", err)
	}
}

func TestSessionService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	now := time.Now().UTC()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "instaclone",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Parse(signed); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for alg none, got %v", err)
	}
}
