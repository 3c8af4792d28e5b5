package errors

import (
	"math"
	"unicode"
)

// ValidateShapeID validates an opaque shape or frame identifier.
//
// Ids come from an external scene graph, so the rules are loose:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateShapeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidShape, "id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidShape, "id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidShape, "id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateDimension checks that a width or height is usable as a size.
func ValidateDimension(name string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidShape, "%s cannot be negative (got %g)", name, v)
	}
	if math.IsNaN(v) {
		return New(ErrCodeInvalidShape, "%s is not a number", name)
	}
	return nil
}
