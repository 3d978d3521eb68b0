package accounts

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mcoot/matchqueue/internal/model"
)

const (
	// MaxUsernameLength is the longest accepted username
	MaxUsernameLength = 32
	// MaxPasswordBytes is the bcrypt input limit
	MaxPasswordBytes = 72
	// MaxRegionLength is the longest accepted region code
	MaxRegionLength = 16
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validateUsername accepts 1-32 characters of [A-Za-z0-9_.-]
func validateUsername(username string) error {
	if username == "" {
		return invalid("username is required")
	}
	if len(username) > MaxUsernameLength {
		return invalid("username must be at most %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '-':
		default:
			return invalid("username may only contain letters, digits, '_', '.' and '-'")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return invalid("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

// validateRegion accepts 1-16 printable, non-space characters.
// Regions are compared for equality only, so no fixed list is enforced.
func validateRegion(region string) error {
	if region == "" {
		return invalid("region is required")
	}
	if utf8.RuneCountInString(region) > MaxRegionLength {
		return invalid("region must be at most %d characters", MaxRegionLength)
	}
	for _, r := range region {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return invalid("region must not contain spaces or control characters")
		}
	}
	return nil
}

func validateMMR(mmr int) error {
	if mmr < 0 {
		return invalid("mmr must not be negative")
	}
	return nil
}
