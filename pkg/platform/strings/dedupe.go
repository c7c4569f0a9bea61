// Package strings holds small slice-of-string helpers used by configuration.
package strings

import "strings"

// Normalizer maps a raw value to its canonical form. An empty result drops
// the value.
type Normalizer func(string) string

// Trim drops surrounding whitespace.
func Trim(v string) string { return strings.TrimSpace(v) }

// TrimLower drops surrounding whitespace and lowercases, for case-insensitive
// values such as hostnames and origins.
func TrimLower(v string) string { return strings.ToLower(strings.TrimSpace(v)) }

// Dedupe normalizes each value and keeps the first occurrence of every
// non-empty result, preserving order.
func Dedupe(values []string, normalize Normalizer) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
