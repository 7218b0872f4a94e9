package auth

import (
	"errors"
	"testing"
	"time"

	"todo-api/internal/apperr"
	"todo-api/internal/config"
)

func testManager(secret string, ttl time.Duration) *TokenManager {
	return NewTokenManager(&config.Config{JWTSecret: secret, TokenTTL: ttl})
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	m := testManager("super-secret", time.Hour)
	tok, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %q, want user-123", userID)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := testManager("super-secret", -time.Second)
	tok, err := m.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = m.Verify(tok)
	if !errors.Is(err, apperr.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := testManager("right-secret", time.Hour).Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = testManager("wrong-secret", time.Hour).Verify(tok)
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := testManager("k", time.Hour).Verify("not.a.jwt")
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_EmptySubject(t *testing.T) {
	t.Parallel()

	m := testManager("super-secret", time.Hour)
	tok, err := m.Issue("")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = m.Verify(tok)
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
