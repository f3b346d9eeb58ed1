// Package textnorm canonicalizes Arabic text for comparison.
//
// Stored verses and incoming queries go through the same Normalize call, so
// optional diacritics, hamza carriers and ending-letter variants never prevent
// a substring match. Normalize is total and idempotent.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IsDiacritic reports whether r is a vowel sign or secondary Quranic mark that
// is dropped before matching.
func IsDiacritic(r rune) bool {
	switch {
	case r >= 0x064B && r <= 0x065F:
		return true
	case r >= 0x0610 && r <= 0x061A:
		return true
	case r >= 0x06D6 && r <= 0x06ED:
		return true
	}
	return false
}

// foldLetter maps letter variants onto the bare letter used for matching.
func foldLetter(r rune) rune {
	switch r {
	case 'ٱ', 'أ', 'إ', 'آ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ؤ':
		return 'و'
	case 'ئ':
		return 'ي'
	case 'ة':
		return 'ه'
	}
	return r
}

func isKept(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) || (r >= '0' && r <= '9') || unicode.IsSpace(r)
}

// Normalize returns the comparison form of s.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// Presentation forms (U+FB50..U+FEFF) decompose to base letters here.
	s = norm.NFKC.String(s)

	folded := strings.Map(func(r rune) rune {
		if IsDiacritic(r) {
			return -1
		}
		r = foldLetter(r)
		if !isKept(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(folded), " ")
}

// Compact removes every whitespace rune from an already normalized string.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
