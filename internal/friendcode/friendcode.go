// Package friendcode handles the human-shareable matching codes players
// exchange. Codes are stored canonically as 12 uppercase alphanumeric
// characters and displayed as SW-XXXX-XXXX-XXXX.
package friendcode

import (
	"errors"
	"strings"
)

// Length is the canonical code length after normalization.
const Length = 12

// displayPrefix is cosmetic only and never stored.
const displayPrefix = "SW"

var ErrInvalidCode = errors.New("friend code must be 12 alphanumeric characters")

// Normalize strips separators, uppercases, and drops the optional SW display
// prefix. It does not validate length; Validate does.
func Normalize(input string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(input) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	// A formatted code ("SW-XXXX-XXXX-XXXX") normalizes to 14 characters; the
	// leading SW is the display prefix, not part of the code.
	if len(code) == Length+len(displayPrefix) && strings.HasPrefix(code, displayPrefix) {
		code = code[len(displayPrefix):]
	}
	return code
}

// Validate reports whether the input normalizes to a well-formed code.
func Validate(input string) error {
	if len(Normalize(input)) != Length {
		return ErrInvalidCode
	}
	return nil
}

// Format renders a code for display: SW-XXXX-XXXX-XXXX. Formatting an
// already-formatted code yields the same string.
func Format(input string) (string, error) {
	code := Normalize(input)
	if len(code) != Length {
		return "", ErrInvalidCode
	}
	groups := make([]string, 0, 1+Length/4)
	groups = append(groups, displayPrefix)
	for i := 0; i < Length; i += 4 {
		groups = append(groups, code[i:i+4])
	}
	return strings.Join(groups, "-"), nil
}
