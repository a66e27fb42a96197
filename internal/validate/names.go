package validate

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
)

// NormalizeName lowercases s and drops every whitespace rune, so that
// "ABC  Colony" and "abc colony" compare equal.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// OfficeMatches reports whether the normalized office name contains the
// normalized area name.
func OfficeMatches(officeName, areaName string) bool {
	want := NormalizeName(areaName)
	if want == "" {
		return false
	}
	return strings.Contains(NormalizeName(officeName), want)
}

// Username derives the login name from a display name and member number:
// the first word, lowercased with its first letter capitalized, followed by
// the zero-padded number.  "amit shah", 7 -> "Amit0007".
func Username(name string, karykarID int64) string {
	first := ""
	if parts := strings.Fields(name); len(parts) > 0 {
		first = strings.ToLower(parts[0])
	}
	if r, size := utf8.DecodeRuneInString(first); size > 0 {
		first = string(unicode.ToUpper(r)) + first[size:]
	}
	return first + model.FormatKarykarID(karykarID)
}

// Email normalizes an address and checks that it parses as a bare address.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.BadRequest("email is invalid")
	}
	return email, nil
}
