package validate

import (
	"unicode/utf8"

	"github.com/iliyamo/sabha-admin/internal/apperr"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// PasswordMessage describes the policy to API consumers.
const PasswordMessage = "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and a symbol"

// Password enforces the complexity policy: at least MinPasswordLength
// characters with one lowercase, one uppercase, one digit and one symbol.
// A symbol is anything outside [A-Za-z0-9_].
func Password(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return apperr.BadRequest(PasswordMessage)
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '_':
		default:
			symbol = true
		}
	}
	if !(lower && upper && digit && symbol) {
		return apperr.BadRequest(PasswordMessage)
	}
	return nil
}
