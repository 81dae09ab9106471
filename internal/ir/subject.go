package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeSubject trims surrounding whitespace and applies Unicode NFC so
// that visually identical names produce identical keys.
func NormalizeSubject(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
