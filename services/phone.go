package services

import "strings"

// NormalizePhone reduces any phone representation to the canonical 10-digit
// key used everywhere in this system: "(555) 123-4567", "555-123-4567",
// "+15551234567" and "15551234567" all normalize to "5551234567".
//
// The canonical form is the bare 10-digit NANP number, no "+1". Every lookup
// and every stored customer phone goes through this function; comparing a
// normalized value against a raw one is always a bug.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return digits[1:], nil
	default:
		return "", ErrInvalidPhoneFormat
	}
}
