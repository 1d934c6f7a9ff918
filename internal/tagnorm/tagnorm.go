// Package tagnorm normalizes tag keys and values into the character set the
// LogSnag API accepts.
package tagnorm

import (
	"regexp"
	"strings"
)

// disallowedRegexp matches everything that is not an ASCII letter,
// whitespace or a dash. Digits and underscores are dropped.
var disallowedRegexp = regexp.MustCompile(`[^A-Za-z\s-]+`)

// whitespaceRegexp matches a run of whitespace.
var whitespaceRegexp = regexp.MustCompile(`\s+`)

// Token normalizes a single tag key or value.
//
// Disallowed characters are removed first, then each whitespace run becomes a
// single dash and the result is lowercased. The function is pure.
func Token(s string) string {
	if s == "" {
		return ""
	}
	s = disallowedRegexp.ReplaceAllString(s, "")
	s = whitespaceRegexp.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

// Pair normalizes a key and a value with the same rule.
func Pair(key, value string) (string, string) {
	return Token(key), Token(value)
}
