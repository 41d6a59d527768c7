package auth

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MinPasswordLen is the minimum accepted password length. The upper bound
// is bcrypt's 72-byte input limit.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

// ValidateEmail checks if an email has a valid format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email) && len(email) < 255
}

// ValidatePassword checks if a password meets the length requirements
func ValidatePassword(password string) bool {
	return len(password) >= MinPasswordLen && len(password) <= MaxPasswordLen
}
