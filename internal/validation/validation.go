// Package validation checks user-supplied account fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	maxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]{1,28}[A-Za-z0-9])$`)
	emailRegex    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
)

// ValidatePassword requires 12-128 characters with upper and lower case
// letters, a digit and a symbol.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("password must contain upper and lower case letters, a digit and a symbol")
	}
	return nil
}

// ValidateUsername allows 3-30 letters, digits, dashes and underscores,
// starting and ending with a letter or digit.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of letters, digits, '-' or '_' and start and end with a letter or digit")
	}
	return nil
}

// ValidateEmail checks the address shape and length.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must be at most %d characters", maxEmailLength)
	}
	if strings.Count(email, "@") != 1 || !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
