package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly 250ms on a
// modern server — negligible for a login, expensive for a brute-forcer.
const defaultCost = 12

// passwordSymbols is the set of symbols the registration policy accepts as
// "special characters". Kept small and explicit so clients can display it.
const passwordSymbols = "@$!%*?&"

// PasswordService provides bcrypt hashing, verification, and the
// registration password policy.
//
// It's a struct rather than free functions so the cost can be injected:
// tests use bcrypt.MinCost and skip the ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests pass bcrypt.MinCost. Do not use low costs in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password with bcrypt. The output embeds its own
// salt and cost, so two hashes of the same password differ yet both verify.
//
// Plaintexts over 72 bytes are rejected explicitly — bcrypt would silently
// truncate them, which surprises callers.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// A mismatch is an expected outcome, not a failure, so the signature is a
// bool: callers translate false into their own generic "invalid email or
// password" error without distinguishing it from an unknown email.
// bcrypt's own compare is constant-time; never compare hashes with ==.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// ValidatePolicy checks a candidate password against the registration rules:
// at least 8 characters, one lowercase, one uppercase, one digit, and one
// symbol from @$!%*?&. It returns a message suitable for the API response,
// or nil when the password passes.
func ValidatePolicy(plaintext string) error {
	if len(plaintext) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range plaintext {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasLower:
		return errors.New("password must contain a lowercase letter")
	case !hasUpper:
		return errors.New("password must contain an uppercase letter")
	case !hasDigit:
		return errors.New("password must contain a digit")
	case !hasSymbol:
		return fmt.Errorf("password must contain a symbol from %s", passwordSymbols)
	}
	return nil
}
