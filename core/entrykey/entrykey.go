package entrykey

import (
	"errors"
	"fmt"
	"strings"

	"pattern-catalog/core/pattern"
)

// ErrInvalidKey is returned when the normalized key is not a bare identifier.
var ErrInvalidKey = errors.New("invalid entry key")

// Separator joins names, values and pairs, and replaces every character
// outside [A-Za-z0-9].
const Separator = '_'

// Builder derives entry keys from field values.
type Builder struct {
	// RejectEmpty fails keys for value sets holding an empty-string value.
	// Missing fields are always skipped.
	RejectEmpty bool
}

// Build returns the canonical key for values using the default Builder.
func Build(values pattern.Values) (string, error) {
	return Builder{}.Build(values)
}

// Build joins "name_value" pairs with "_", skipping missing fields, and then
// replaces every character outside [A-Za-z0-9] with "_". The result must be
// non-empty and start with a letter or underscore.
func (b Builder) Build(values pattern.Values) (string, error) {
	var raw strings.Builder
	for _, fv := range values {
		if fv.Missing {
			continue
		}
		if b.RejectEmpty && fv.Value == "" {
			return "", fmt.Errorf("%w: field %q is empty", ErrInvalidKey, fv.Name)
		}
		if raw.Len() > 0 {
			raw.WriteRune(Separator)
		}
		raw.WriteString(fv.Name)
		raw.WriteRune(Separator)
		raw.WriteString(fv.Value)
	}

	key := Normalize(raw.String())
	if !IsIdentifier(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// Normalize replaces every code point outside [A-Za-z0-9] with "_".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(Separator)
		}
	}
	return b.String()
}

// IsIdentifier reports whether s is non-empty, starts with a letter or
// underscore, and holds only letters, digits and underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == Separator, isLetter(r):
		case isDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isAlnum(r rune) bool  { return isLetter(r) || isDigit(r) }
