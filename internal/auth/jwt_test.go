package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)

	token, expiresAt, err := m.GenerateToken("user-1", "Alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("Expected expiry in the future")
	}

	claims, err := m.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Name != "Alice" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", 5*time.Minute)
	other := NewJWTManager("other-secret", 5*time.Minute)

	token, _, _ := other.GenerateToken("user-1", "")
	if _, err := m.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	token, _, _ = expired.GenerateToken("user-1", "")
	if _, err := m.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := m.VerifyToken("garbage"); err == nil {
		t.Error("Expected error for garbage token")
	}
}
