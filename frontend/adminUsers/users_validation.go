package adminusers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minNameLength = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DefaultValidator applies ValidateUserInput.
var DefaultValidator Validator = ValidatorFunc(ValidateUserInput)

func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidateUserInput reports every failing field, not just the first one.
func ValidateUserInput(in UserInput) Validation {
	errs := make(FieldErrors)
	if utf8.RuneCountInString(strings.TrimSpace(in.Name)) < minNameLength {
		errs["name"] = "Name must be at least 3 characters"
	}
	if !IsEmail(strings.TrimSpace(in.Email)) {
		errs["email"] = "Invalid email address"
	}
	if strings.TrimSpace(string(in.Role)) == "" {
		errs["role"] = "Select a role"
	} else if !Role(strings.TrimSpace(string(in.Role))).Valid() {
		errs["role"] = "Unknown role"
	}
	return Validation{Valid: len(errs) == 0, FieldErrors: errs}
}
