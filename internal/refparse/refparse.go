// Package refparse detects and normalizes reference-shaped tokens
// ("John 3:16", "psalm 23:1-6") in raw chat text.
package refparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// word SPACE 1-3 digit chapter ":" 1-3 digit verse, optional "-" end verse
	detectRe = regexp.MustCompile(`[A-Za-z0-9]+\s+\d{1,3}:\d{1,3}(-\d{1,3})?`)

	// Extraction admits one leading numeral word so "1 john 3:16" keeps
	// its book ordinal.
	extractRe = regexp.MustCompile(`(\d\s+)?[A-Za-z][A-Za-z0-9]*\s+\d{1,3}:\d{1,3}(-\d{1,3})?`)

	// trailing letter followed directly by a digit ("john3:16")
	compressedRe = regexp.MustCompile(`([A-Za-z])(\d)`)

	rangeRe = regexp.MustCompile(`^(.*:)(\d+)-(\d+)$`)
)

// Detect reports whether text contains a reference-shaped token.
func Detect(text string) bool {
	return detectRe.MatchString(text)
}

// NormalizeSpacing inserts a single space between a trailing letter and a
// following digit, so compressed forms like "john3:16" become detectable.
func NormalizeSpacing(text string) string {
	return compressedRe.ReplaceAllString(text, "$1 $2")
}

// Extract returns the first reference-shaped substring of text, or ""
// when none is present.
func Extract(text string) string {
	return extractRe.FindString(text)
}

// Canonicalize lower-cases, collapses whitespace, trims, then title-cases
// each word. Idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(ref string) string {
	words := strings.Fields(strings.ToLower(ref))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ClampRange rewrites the end verse of "<prefix>:<A>-<B>" so that the span
// never exceeds maxSpan. References without a range, or with malformed
// numbers, pass through unchanged.
func ClampRange(ref string, maxSpan int) string {
	m := rangeRe.FindStringSubmatch(ref)
	if m == nil {
		return ref
	}
	a, errA := strconv.Atoi(m[2])
	b, errB := strconv.Atoi(m[3])
	if errA != nil || errB != nil {
		return ref
	}
	if b-a <= maxSpan {
		return ref
	}
	return m[1] + m[2] + "-" + strconv.Itoa(a+maxSpan)
}
