package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name cleans a raw subject name for registry lookup. It is pure and
// total: any input yields a usable (possibly empty) string.
//
// Underscores and hyphens become spaces, so "John_Doe" and "Anna-Maria"
// both split into words. The trailing token is then dropped only when it
// is a mixed alphanumeric identifier (at least one letter and one digit),
// which removes social-platform profile suffixes like the "1a889a2b8" in
// "John_Doe-1a889a2b8" while leaving real names, including names with a
// purely numeric or purely alphabetic last token, untouched.
func Name(raw string) string {
	cleaned := norm.NFC.String(raw)
	cleaned = strings.NewReplacer("_", " ", "-", " ").Replace(cleaned)

	fields := strings.Fields(cleaned)
	if len(fields) > 1 && isMixedAlphanumeric(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}

// isMixedAlphanumeric reports whether the token contains at least one
// letter and at least one digit, and nothing else.
func isMixedAlphanumeric(token string) bool {
	var hasLetter, hasDigit bool
	for _, r := range token {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
