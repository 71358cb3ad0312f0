package domain

import (
	"regexp"
	"strings"
)

// emailPattern is the one canonical syntactic check used by every layer:
// non-space/non-@ characters, an @, more of the same, a dot, more of the
// same. Deliberately permissive — not RFC 5321 validation.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeEmail lowercases and trims an address. Emails are stored and
// compared in this normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
