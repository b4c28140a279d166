package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is the single failure reported for any sign-in
	// problem. Unknown email and wrong password are deliberately
	// indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	errMissingAdminEmail = errors.New("auth: admin email is required")
	errMissingAdminHash  = errors.New("auth: admin password hash is required")
)

// CredentialGate checks an email and password pair against the single
// configured administrator account.
type CredentialGate struct {
	adminEmail   string
	passwordHash []byte
}

// NewCredentialGate constructs the gate from the configured admin email and
// bcrypt password hash.
func NewCredentialGate(adminEmail, passwordHash string) (*CredentialGate, error) {
	email := normalizeEmail(adminEmail)
	if email == "" {
		return nil, errMissingAdminEmail
	}
	hash := strings.TrimSpace(passwordHash)
	if hash == "" {
		return nil, errMissingAdminHash
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, errMissingAdminHash
	}
	return &CredentialGate{
		adminEmail:   email,
		passwordHash: []byte(hash),
	}, nil
}

// Authenticate returns the canonical admin subject when the pair matches.
// The bcrypt comparison always runs so a rejected email costs the same as a
// rejected password.
func (g *CredentialGate) Authenticate(email, password string) (string, error) {
	candidate := normalizeEmail(email)
	emailMatches := subtle.ConstantTimeCompare([]byte(candidate), []byte(g.adminEmail)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password))
	if !emailMatches || passwordErr != nil {
		return "", ErrInvalidCredentials
	}
	return g.adminEmail, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
