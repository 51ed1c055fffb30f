// Package token normalizes free text into comparable word tokens.
package token

import "strings"

// Tokenize lowercases text and returns maximal runs of ASCII letters and digits
// in order of appearance. Duplicates are kept; use NewSet to collapse them.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	var tokens []string
	start := -1
	for i := 0; i < len(lower); i++ {
		if isWordByte(lower[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, lower[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, lower[start:])
	}
	return tokens
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// Set is an unordered collection of unique tokens.
type Set map[string]struct{}

// NewSet builds a Set from tokens.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Of tokenizes text and returns its token set.
func Of(text string) Set {
	return NewSet(Tokenize(text))
}

// Len returns the number of unique tokens.
func (s Set) Len() int { return len(s) }

// Contains reports whether tok is in the set.
func (s Set) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// IntersectionLen returns |s ∩ other|.
func (s Set) IntersectionLen(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if large.Contains(t) {
			n++
		}
	}
	return n
}

// UnionLen returns |s ∪ other|.
func (s Set) UnionLen(other Set) int {
	return len(s) + len(other) - s.IntersectionLen(other)
}
