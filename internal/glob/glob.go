// Package glob matches list names against user patterns where '*' stands
// for any run of characters and '?' for exactly one.
package glob

import (
	"regexp"
	"strings"
)

// Compile translates pattern into an anchored, case-insensitive regular
// expression. Every pattern compiles, including the empty one.
func Compile(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// Matches reports whether the whole of text matches pattern.
func Matches(text, pattern string) bool {
	return Compile(pattern).MatchString(text)
}
