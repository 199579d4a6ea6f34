// Package identifier extracts the business order number from document
// filenames and content. Extraction is deterministic: identical input
// always yields the identical result, which keeps matching idempotent.
package identifier

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Validation bounds for the business token.
const (
	// MinLength and MaxLength bound acceptable identifier lengths.
	MinLength = 4
	MaxLength = 8

	// PreferredLength is the canonical order number length.
	PreferredLength = 7
)

// Pattern rules, tried in order: explicitly prefixed identifiers win over
// the bare canonical-length token, which wins over the generic fallback.
var (
	prefixedPattern = regexp.MustCompile(`(?i)(?:order|auftrag(?:snr)?|bestellung)[\s#:._-]*(\d{4,8})`)
	digitRunPattern = regexp.MustCompile(`\d+`)
)

// Extract pulls an identifier from a filename and, failing that, from the
// document content. Either source may be empty. Returns ok=false when no
// validated identifier is found; that is not an error condition.
func Extract(filename, content string) (string, bool) {
	if id, ok := FromFilename(filename); ok {
		return id, true
	}
	return FromText(content)
}

// FromFilename extracts an identifier from a file path's base name.
func FromFilename(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return FromText(base)
}

// FromText runs the pattern rules over a text and returns the first
// validated match.
func FromText(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	// Rule 1: explicitly prefixed identifiers ("Order #4079038").
	for _, match := range prefixedPattern.FindAllStringSubmatch(text, -1) {
		if Validate(match[1]) {
			return match[1], true
		}
	}

	// Maximal digit runs; partial matches inside longer numbers
	// (dates, phone numbers) are not identifiers.
	runs := digitRunPattern.FindAllString(text, -1)

	// Rule 2: canonical-length token.
	for _, run := range runs {
		if len(run) == PreferredLength && Validate(run) {
			return run, true
		}
	}

	// Rule 3: generic fallback within the acceptable range.
	for _, run := range runs {
		if Validate(run) {
			return run, true
		}
	}

	return "", false
}

// Validate checks a candidate token against the business rules:
// non-empty, all digits, length within bounds, and at least two distinct
// characters (rejects degenerate tokens like "0000000").
func Validate(token string) bool {
	if len(token) < MinLength || len(token) > MaxLength {
		return false
	}
	distinct := map[rune]struct{}{}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
		distinct[r] = struct{}{}
	}
	return len(distinct) >= 2
}
