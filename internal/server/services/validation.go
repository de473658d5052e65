package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit; longer passwords would be
	// silently truncated by the hash.
	MaxPasswordBytes = 72
)

var emailRegex = regexp.MustCompile(`.+@.+\..+`)

// ValidationError lists per-field problems with a registration request.
// It matches common.ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return common.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// ValidateRegister checks a registration request. username and email are
// expected to be trimmed already.
func ValidateRegister(username, email, password string) error {
	fields := make(map[string]string)

	if username == "" {
		fields["username"] = "Username is required"
	}

	if email == "" {
		fields["email"] = "Email is required"
	} else if !emailRegex.MatchString(email) {
		fields["email"] = "Please enter a valid email"
	}

	switch {
	case password == "":
		fields["password"] = "Password is required"
	case utf8.RuneCountInString(password) < MinPasswordLength:
		fields["password"] = "Password must be at least 8 characters"
	case len(password) > MaxPasswordBytes:
		fields["password"] = "Password is too long"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
