package handlers

import (
	"testing"
	"time"

	"github.com/roomdesk/roomdesk/libs/auth"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/storage"
)

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestRefreshTokenGeneration(t *testing.T) {
	a, err := newRefreshToken()
	if err != nil {
		t.Fatalf("newRefreshToken failed: %v", err)
	}
	b, err := newRefreshToken()
	if err != nil {
		t.Fatalf("newRefreshToken failed: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("tokens must be unique")
	}
}

func TestIssueJWTCarriesIdentity(t *testing.T) {
	h := NewAuthHandler("secret", time.Hour, 0, nil, nil, nil, nil, nil)
	token, err := h.issueJWT(storage.User{ID: "user-1", Email: "ada@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("issueJWT failed: %v", err)
	}
	claims, err := auth.ParseAndVerifyHS256(token, "secret")
	if err != nil {
		t.Fatalf("token should verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp <= claims.Iat {
		t.Fatal("expiry must be after issuance")
	}
}
