// Package normalize holds the canonicalizer helpers: field-level cleanup
// applied to raw source values before records enter the dedup engine.
// Malformed optional values degrade to their zero value, never reject the
// record.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var entitySuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`PLLC|P\.?L\.?L\.?C\.?|P\.?C\.?|DBA|D/B/A)\s*\.?\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

var nonDigit = regexp.MustCompile(`\D`)

// diacritics removes combining marks after NFD decomposition.
var diacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// String trims whitespace and collapses internal runs of spaces.
// Returns "" for values that are empty after trimming.
func String(v string) string {
	s := strings.TrimSpace(v)
	return multiSpace.ReplaceAllString(s, " ")
}

// Domain lower-cases a domain or URL and strips scheme, www prefix,
// path, and trailing slash.
func Domain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, "/")
}

// PhoneDigits reduces a phone number to bare digits, dropping a single
// leading US country-code "1" so "+1 (555) 010-1234" and "555-010-1234"
// compare equal.
func PhoneDigits(raw string) string {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// MatchName produces the matching form of a company name: lower-cased,
// diacritics folded, entity suffixes (LLC, Inc, Corp, ...) stripped, and
// whitespace collapsed. The display form of the name is left untouched.
func MatchName(name string) string {
	n := strings.TrimSpace(name)
	if folded, _, err := transform.String(diacritics, n); err == nil {
		n = folded
	}
	n = entitySuffixes.ReplaceAllString(n, "")
	n = strings.ToLower(n)
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Int parses v as a base-10 integer, tolerating thousands separators.
// Malformed input yields nil.
func Int(v string) *int {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Int64 parses v as a base-10 64-bit integer, tolerating thousands
// separators and a leading dollar sign. Malformed input yields nil.
func Int64(v string) *int64 {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Bool parses common boolean spellings. Malformed input yields nil.
func Bool(v string) *bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "t", "yes", "y", "1":
		b := true
		return &b
	case "false", "f", "no", "n", "0":
		b := false
		return &b
	}
	return nil
}

// Date parses an ISO date or timestamp prefix into a date-precision time.
// Malformed input yields nil.
func Date(v string) *time.Time {
	s := strings.TrimSpace(v)
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// Timestamp parses an RFC 3339 timestamp, falling back to date-only input.
// Malformed input yields the zero time.
func Timestamp(v string) time.Time {
	s := strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if d := Date(s); d != nil {
		return *d
	}
	return time.Time{}
}
