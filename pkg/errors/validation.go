package errors

import (
	"strings"
	"unicode"
)

// ValidateObjectName validates a name under which an object is stored in a
// container. It rejects names that could collide with internal bookkeeping or
// be used for injection into storage queries.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateObjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "object name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "object name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "object name contains control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "object name cannot have leading or trailing whitespace")
	}

	return nil
}

// ValidateSurfaceName validates a drawing surface name. Surface names appear
// in saved artifact metadata and viewer titles, so the rules match object
// names with the extra restriction that path separators are rejected.
func ValidateSurfaceName(name string) error {
	if err := ValidateObjectName(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "surface name cannot contain path separators")
	}
	return nil
}
