package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestNewCredentialGateValidation(t *testing.T) {
	hash := mustHash(t, "correct-horse")

	if _, err := NewCredentialGate("", hash); err == nil {
		t.Fatalf("expected missing email to be rejected")
	}
	if _, err := NewCredentialGate("admin@example.com", ""); err == nil {
		t.Fatalf("expected missing hash to be rejected")
	}
	if _, err := NewCredentialGate("admin@example.com", "plaintext-not-a-hash"); err == nil {
		t.Fatalf("expected malformed hash to be rejected")
	}
	if _, err := NewCredentialGate("admin@example.com", hash); err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	gate, err := NewCredentialGate("Admin@Example.com", mustHash(t, "correct-horse"))
	if err != nil {
		t.Fatalf("failed to construct gate: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct-pair", email: "admin@example.com", password: "correct-horse"},
		{name: "email-case-insensitive", email: "ADMIN@EXAMPLE.COM", password: "correct-horse"},
		{name: "wrong-password", email: "admin@example.com", password: "battery-staple", wantErr: ErrInvalidCredentials},
		{name: "unknown-email", email: "intruder@example.com", password: "correct-horse", wantErr: ErrInvalidCredentials},
		{name: "both-wrong", email: "intruder@example.com", password: "battery-staple", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := gate.Authenticate(tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected authenticate error: %v", err)
			}
			if subject != "admin@example.com" {
				t.Fatalf("unexpected subject %q", subject)
			}
		})
	}
}
