// Package email holds the address and display-name helpers shared by the
// portal client and the auth server.
package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// IsValid reports whether address is a bare addr-spec with a dotted domain.
func IsValid(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address || parsed.Name != "" {
		return false
	}
	at := strings.LastIndexByte(address, '@')
	return at > 0 && strings.Contains(address[at+1:], ".")
}

// Normalize lowercases and trims an address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// SplitDisplayName splits a display name at the first space. A name without a
// space yields an empty last name.
func SplitDisplayName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}

// JoinDisplayName is the inverse of SplitDisplayName.
func JoinDisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// DeriveNameFromEmail guesses a greeting name from the local part of an address.
func DeriveNameFromEmail(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "there"
	}
	return capitalize(parts[0])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
