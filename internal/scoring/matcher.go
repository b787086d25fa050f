package scoring

import (
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"resuin/internal/keywords"
	"resuin/internal/types"
)

// Matcher decides whether a candidate keyword is present in a resume.
type Matcher interface {
	Match(candidate keywords.Keyword, resume *keywords.Set) bool
}

// NewMatcher returns the matching strategy for mode.
func NewMatcher(mode types.Mode, cfg Config) (Matcher, error) {
	switch mode {
	case types.ModeRuleBased:
		return exactMatcher{}, nil
	case types.ModeSmart:
		return fuzzyMatcher{maxDistance: cfg.MaxEditDistance, minLength: cfg.MinFuzzyLength}, nil
	default:
		return nil, fmt.Errorf("no matcher for mode %q", mode)
	}
}

type exactMatcher struct{}

func (exactMatcher) Match(candidate keywords.Keyword, resume *keywords.Set) bool {
	return resume.Has(candidate.Term)
}

// fuzzyMatcher accepts exact terms, shared synonym classes, and terms
// within maxDistance edits when both sides are at least minLength runes.
// Every exact match is also a fuzzy match.
type fuzzyMatcher struct {
	maxDistance int
	minLength   int
}

func (m fuzzyMatcher) Match(candidate keywords.Keyword, resume *keywords.Set) bool {
	if resume.Has(candidate.Term) {
		return true
	}
	if candidate.Class != "" && resume.HasClass(candidate.Class) {
		return true
	}
	if m.maxDistance <= 0 || utf8.RuneCountInString(candidate.Term) < m.minLength {
		return false
	}
	for kw := range resume.All() {
		if utf8.RuneCountInString(kw.Term) < m.minLength {
			continue
		}
		if levenshtein.ComputeDistance(candidate.Term, kw.Term) <= m.maxDistance {
			return true
		}
	}
	return false
}
