package auth

import (
	"errors"
	"testing"
	"time"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: time.Hour,
		Issuer:        "test-issuer",
	}
}

func TestJWTManager_GenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	userID := "user-123"
	username := "alice"

	token, err := manager.GenerateToken(userID, username)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Error("GenerateToken() returned empty token")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.Subject != userID {
		t.Errorf("claims.Subject = %v, want %v", claims.Subject, userID)
	}
	if claims.Username != username {
		t.Errorf("claims.Username = %v, want %v", claims.Username, username)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, "test-issuer")
	}
}

func TestJWTManager_ValidateToken_Invalid(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage token", token: "not-a-token"},
		{name: "empty token", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTManager_ValidateToken_WrongKey(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	token, err := manager.GenerateToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	other := NewJWTManager(JWTConfig{
		SecretKey:     "different-secret",
		TokenDuration: time.Hour,
		Issuer:        "test-issuer",
	})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() with wrong key error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_ValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager(JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: -time.Minute,
		Issuer:        "test-issuer",
	})

	token, err := manager.GenerateToken("user-123", "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTManager_TokenDuration(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	if got := manager.TokenDuration(); got != 3600 {
		t.Errorf("TokenDuration() = %d, want 3600", got)
	}
}
