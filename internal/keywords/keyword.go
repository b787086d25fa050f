package keywords

import "iter"

// Keyword is a normalized term. Term is the comparison key (lower-cased,
// stemmed); Text is the surface form first seen and is only for display.
type Keyword struct {
	Term  string `json:"term"`
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

// Label returns the display form of the keyword.
func (k Keyword) Label() string {
	if k.Text != "" {
		return k.Text
	}
	return k.Term
}

// Set is an insertion-ordered, term-deduplicated keyword collection.
// The zero value is an empty set ready to use.
type Set struct {
	items []Keyword
	index map[string]int
}

// NewSet builds a set from keywords, keeping the first occurrence of each term.
func NewSet(kws ...Keyword) *Set {
	s := &Set{}
	for _, kw := range kws {
		s.Add(kw)
	}
	return s
}

// Add inserts kw unless its term is already present. It reports whether
// the keyword was added.
func (s *Set) Add(kw Keyword) bool {
	if kw.Term == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[kw.Term]; ok {
		return false
	}
	s.index[kw.Term] = len(s.items)
	s.items = append(s.items, kw)
	return true
}

// Has reports whether a keyword with the given term is present.
func (s *Set) Has(term string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[term]
	return ok
}

// Get returns the keyword stored under term.
func (s *Set) Get(term string) (Keyword, bool) {
	if s == nil {
		return Keyword{}, false
	}
	i, ok := s.index[term]
	if !ok {
		return Keyword{}, false
	}
	return s.items[i], true
}

// Len returns the number of keywords.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Keywords returns a copy of the keywords in insertion order.
func (s *Set) Keywords() []Keyword {
	if s == nil {
		return nil
	}
	out := make([]Keyword, len(s.items))
	copy(out, s.items)
	return out
}

// All iterates over the keywords in insertion order without copying.
func (s *Set) All() iter.Seq[Keyword] {
	return func(yield func(Keyword) bool) {
		if s == nil {
			return
		}
		for _, kw := range s.items {
			if !yield(kw) {
				return
			}
		}
	}
}

// Terms returns the comparison keys in insertion order.
func (s *Set) Terms() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	for i, kw := range s.items {
		out[i] = kw.Term
	}
	return out
}

// HasClass reports whether any keyword belongs to the synonym class.
func (s *Set) HasClass(class string) bool {
	if s == nil || class == "" {
		return false
	}
	for _, kw := range s.items {
		if kw.Class == class {
			return true
		}
	}
	return false
}

// Union returns a new set holding s followed by every set in others.
func Union(sets ...*Set) *Set {
	out := &Set{}
	for _, s := range sets {
		if s == nil {
			continue
		}
		for _, kw := range s.items {
			out.Add(kw)
		}
	}
	return out
}
