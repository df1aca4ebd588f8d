package cosmetics

import (
	"errors"
	"regexp"
	"strings"

	"github.com/confessly/confessly/app/models"
)

var (
	// ErrInvalidColor rejects anything that is not "#" + 3 or 6 hex digits.
	ErrInvalidColor = errors.New("color must be a 3- or 6-digit hex value")
	// ErrInvalidGradient rejects gradients with fewer than two valid colors.
	ErrInvalidGradient = errors.New("gradient needs at least 2 valid hex colors")
	// ErrInvalidUsername rejects usernames without the reserved prefix or
	// with illegal characters.
	ErrInvalidUsername = errors.New("username must start with " + models.AnonymousUsernamePrefix + " followed by 3-30 of a-z, 0-9 or _")
	// ErrSameUsername rejects a rename to the name already held.
	ErrSameUsername = errors.New("new username matches the current one")
	// ErrUsernameTaken rejects a rename to a name another account holds.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrAlreadyOwned rejects repurchases of one-time features.
	ErrAlreadyOwned = errors.New("feature already purchased")
	// ErrNotAnonymous rejects cosmetic operations on provider-backed accounts.
	ErrNotAnonymous = errors.New("cosmetics are only available for anonymous accounts")
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var anonUsernamePattern = regexp.MustCompile(`^` + models.AnonymousUsernamePrefix + `[a-z0-9_]{3,30}$`)

// ValidHexColor reports whether s is a well-formed hex color.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// ValidateGradient checks a gradient color list: at least two entries, every
// entry a valid hex color.
func ValidateGradient(colors []string) error {
	if len(colors) < 2 {
		return ErrInvalidGradient
	}
	for _, c := range colors {
		if !ValidHexColor(c) {
			return ErrInvalidGradient
		}
	}
	return nil
}

// ValidateAnonymousUsername checks the reserved prefix and character set.
// The comparison is case-insensitive; callers store the lowercased form.
func ValidateAnonymousUsername(name string) error {
	if !anonUsernamePattern.MatchString(strings.ToLower(strings.TrimSpace(name))) {
		return ErrInvalidUsername
	}
	return nil
}
