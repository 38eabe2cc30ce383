package validation

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}$`)

// IsEmailValid reports whether the input looks like an email address.
// It gates UI affordances only; the server-side schema is authoritative.
func IsEmailValid(email string) bool {
	return emailPattern.MatchString(email)
}
