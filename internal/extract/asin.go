package extract

import (
	"regexp"
	"strings"
)

// Amazon standard identification numbers are 10 uppercase alphanumerics,
// and in practice almost always start with B. The primary pattern catches
// the common form; the fallback catches legacy ISBN-style ASINs but only
// when the whole token is exactly 10 characters.
var (
	asinPrimaryRe  = regexp.MustCompile(`\b(B[A-Z0-9]{9})\b`)
	asinFallbackRe = regexp.MustCompile(`\b([A-Z0-9]{10})\b`)
	asinExactRe    = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	// All-digit tokens are dates and order ids; all-letter tokens are
	// ordinary ten-letter words once the text is uppercased.
	allDigitsRe  = regexp.MustCompile(`^[0-9]{10}$`)
	allLettersRe = regexp.MustCompile(`^[A-Z]{10}$`)
)

// FindASIN scans text for an ASIN-shaped token. The text is uppercased
// before matching so casing in the utterance does not matter.
func FindASIN(text string) string {
	upper := strings.ToUpper(text)
	for _, m := range asinPrimaryRe.FindAllStringSubmatch(upper, -1) {
		if !allLettersRe.MatchString(m[1]) {
			return m[1]
		}
	}
	for _, m := range asinFallbackRe.FindAllStringSubmatch(upper, -1) {
		if !allDigitsRe.MatchString(m[1]) && !allLettersRe.MatchString(m[1]) {
			return m[1]
		}
	}
	return ""
}

// ValidASIN reports whether s is exactly 10 uppercase alphanumerics.
func ValidASIN(s string) bool {
	return asinExactRe.MatchString(s)
}
