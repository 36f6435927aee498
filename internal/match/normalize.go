// Package match provides artist-name normalization, fuzzy matching and alias
// resolution for linking uploaded tickets to canonical concert records.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Quote and punctuation marks stripped during normalization. Hebrew geresh and
// gershayim show up in OCR output both as the dedicated code points and as
// plain ASCII quotes, so both families are removed.
const strippedMarks = "׳״'\"`.,"

// Normalize canonicalizes a name string for comparison:
//   - Unicode NFC normalization
//   - lowercase
//   - Hebrew geresh/gershayim and ASCII quote marks removed
//   - periods and commas removed
//   - internal whitespace runs collapsed to a single space
//   - leading/trailing whitespace trimmed
//
// Normalize is total and idempotent; empty input yields an empty string.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)

	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := true // suppress leading whitespace

	for _, r := range s {
		if strings.ContainsRune(strippedMarks, r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !prevSpace {
				sb.WriteRune(' ')
				prevSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimRight(sb.String(), " ")
}
