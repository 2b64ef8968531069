package fieldseal

import "strings"

// Normalizer canonicalizes plaintext before encryption (see
// WithNormalizer). For deterministic schemes the same normalizer runs on
// the write path and the query path, so equality matches survive
// formatting differences in the input.
//
// A Normalizer must be pure: same input, same output. Changing a
// deterministic field's normalizer strands previously written values;
// keep the old behavior reachable through a previous scheme.
type Normalizer func(string) string

// NormalizeEmail canonicalizes email addresses for case-insensitive
// lookup. Applies: lowercase + trim whitespace.
//
// Example: " Alice@Example.COM " -> "alice@example.com"
var NormalizeEmail Normalizer = func(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone canonicalizes phone numbers by keeping ASCII digits
// only.
//
// Example: "(555) 123-4567" -> "5551234567"
// Example: "+1-555-123-4567" -> "15551234567"
var NormalizePhone Normalizer = func(s string) string {
	var digits strings.Builder
	digits.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// NormalizeNone is an identity normalizer that returns the input
// unchanged.
var NormalizeNone Normalizer = func(s string) string {
	return s
}

// NormalizeTrim trims leading and trailing whitespace only, preserving
// case.
var NormalizeTrim Normalizer = func(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeLower lowercases only (no trim). Schemes built with
// WithDowncase get this behavior without a normalizer.
var NormalizeLower Normalizer = func(s string) string {
	return strings.ToLower(s)
}
