// Package search finds messages whose content contains a query, ignoring case.
package search

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Matcher is an Aho-Corasick automaton built for one query.
type Matcher struct {
	machine *goahocorasick.Machine
	length  int
}

// NewMatcher compiles query. An empty query matches every text.
func NewMatcher(query string) (*Matcher, error) {
	pattern := lowerRunes(query)
	if len(pattern) == 0 {
		return &Matcher{}, nil
	}
	m := new(goahocorasick.Machine)
	if err := m.Build([][]rune{pattern}); err != nil {
		return nil, err
	}
	return &Matcher{machine: m, length: len(pattern)}, nil
}

// Match reports whether text contains the query.
func (m *Matcher) Match(text string) bool {
	if m.machine == nil {
		return true
	}
	runes := lowerRunes(text)
	if len(runes) < m.length {
		return false
	}
	return len(m.machine.MultiPatternSearch(runes, true)) > 0
}

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
