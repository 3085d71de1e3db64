// Package fuzzymatch ranks short labels against a typed query. Every query
// rune must appear in the candidate in order; contiguous runs and matches at
// word starts rank higher.
package fuzzymatch

import (
	"sort"
	"strings"
	"unicode"
)

const (
	scoreFirstAtStart  = 100
	scoreFirstInside   = 50
	scoreConsecutive   = 50
	scoreGap           = 20
	scoreWordBoundary  = 15
	lengthBonusCeiling = 1000
)

// FuzzyMatch is one candidate that matched the query.
type FuzzyMatch struct {
	Text     string
	Score    int
	Indices  []int // rune positions of matched characters
	Original int   // index in the candidate slice
}

type FuzzyMatcher struct {
	caseSensitive bool
}

func NewFuzzyMatcher(caseSensitive bool) *FuzzyMatcher {
	return &FuzzyMatcher{caseSensitive: caseSensitive}
}

// Match returns the matching candidates, best first. An empty query keeps
// every candidate in its original order.
func (fm *FuzzyMatcher) Match(query string, candidates []string) []FuzzyMatch {
	results := make([]FuzzyMatch, 0, len(candidates))
	for i, c := range candidates {
		if m, ok := fm.score(query, c); ok {
			m.Original = i
			results = append(results, m)
		}
	}
	if query != "" {
		sort.SliceStable(results, func(a, b int) bool {
			return results[a].Score > results[b].Score
		})
	}
	return results
}

// Best returns the highest ranked candidate.
func (fm *FuzzyMatcher) Best(query string, candidates []string) (FuzzyMatch, bool) {
	results := fm.Match(query, candidates)
	if len(results) == 0 {
		return FuzzyMatch{}, false
	}
	return results[0], true
}

func (fm *FuzzyMatcher) fold(s string) []rune {
	if fm.caseSensitive {
		return []rune(s)
	}
	return []rune(strings.ToLower(s))
}

func (fm *FuzzyMatcher) score(query, candidate string) (FuzzyMatch, bool) {
	m := FuzzyMatch{Text: candidate, Indices: []int{}}
	if query == "" {
		return m, true
	}

	q := fm.fold(query)
	c := fm.fold(candidate)
	original := []rune(candidate)

	qi := 0
	for i := 0; i < len(c) && qi < len(q); i++ {
		if c[i] != q[qi] {
			continue
		}
		switch {
		case qi == 0 && i == 0:
			m.Score += scoreFirstAtStart
		case qi == 0:
			m.Score += scoreFirstInside
		case m.Indices[len(m.Indices)-1] == i-1:
			m.Score += scoreConsecutive
		default:
			m.Score += scoreGap
		}
		if i > 0 && isBoundary(original[i-1]) {
			m.Score += scoreWordBoundary
		}
		m.Indices = append(m.Indices, i)
		qi++
	}
	if qi < len(q) {
		return FuzzyMatch{}, false
	}

	m.Score += (lengthBonusCeiling - len(c)) / 10
	return m, true
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// HighlightMatch wraps each run of matched characters in startTag/endTag.
func (fm *FuzzyMatcher) HighlightMatch(match FuzzyMatch, startTag, endTag string) string {
	if len(match.Indices) == 0 {
		return match.Text
	}

	matched := make(map[int]bool, len(match.Indices))
	for _, idx := range match.Indices {
		matched[idx] = true
	}

	var sb strings.Builder
	open := false
	for i, r := range []rune(match.Text) {
		if matched[i] != open {
			if open {
				sb.WriteString(endTag)
			} else {
				sb.WriteString(startTag)
			}
			open = !open
		}
		sb.WriteRune(r)
	}
	if open {
		sb.WriteString(endTag)
	}
	return sb.String()
}
