// Package keywords turns free text into comparable keyword sets.
package keywords

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// noisePattern removes emails and links before tokenizing; their fragments
// are not vocabulary.
var noisePattern = regexp.MustCompile(`\S+@\S+|https?://\S+|www\.\S+`)

// Extractor normalizes text into keywords. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	version      string
	stopWords    map[string]struct{}
	phrases      map[string]string // stem key -> display text
	dotted       map[string]struct{}
	classes      map[string]string // stem key -> synonym class
	maxPhraseLen int
}

// NewExtractor builds an extractor from a lexicon. extraPhrases are added
// to the phrase dictionary; registries pass their multi-word terms here so
// that profile vocabulary survives tokenization intact.
func NewExtractor(lex *Lexicon, extraPhrases ...string) *Extractor {
	e := &Extractor{
		version:   lex.Version,
		stopWords: make(map[string]struct{}, len(lex.StopWords)),
		phrases:   make(map[string]string),
		dotted:    make(map[string]struct{}),
		classes:   make(map[string]string),
	}

	for _, w := range lex.StopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		e.stopWords[w] = struct{}{}
		e.stopWords[stem(w)] = struct{}{}
	}

	for _, p := range lex.Phrases {
		e.addPhrase(p)
	}
	for _, class := range lex.Synonyms {
		for _, term := range class.Terms {
			e.addPhrase(term)
		}
	}
	for _, p := range extraPhrases {
		e.addPhrase(p)
	}

	// First class wins when stemming folds terms of two classes together.
	for _, class := range lex.Synonyms {
		for _, term := range class.Terms {
			key := e.phraseKey(term)
			if _, taken := e.classes[key]; !taken && key != "" {
				e.classes[key] = class.ID
			}
		}
	}

	return e
}

// Version returns the lexicon version the extractor was built from.
func (e *Extractor) Version() string {
	return e.version
}

func (e *Extractor) addPhrase(phrase string) {
	text := strings.ToLower(strings.TrimSpace(phrase))
	tokens := splitWords(text, keepAllDots)
	if len(tokens) == 0 {
		return
	}
	if len(tokens) == 1 && e.isStopWord(tokens[0], stem(tokens[0])) {
		return
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok, ".") {
			e.dotted[tok] = struct{}{}
		}
	}
	key := joinStems(tokens)
	if _, ok := e.phrases[key]; !ok {
		e.phrases[key] = text
	}
	if len(tokens) > e.maxPhraseLen {
		e.maxPhraseLen = len(tokens)
	}
}

func (e *Extractor) phraseKey(phrase string) string {
	return joinStems(splitWords(strings.ToLower(phrase), keepAllDots))
}

func (e *Extractor) keepDot(tok string) bool {
	_, ok := e.dotted[tok]
	return ok
}

// Extract returns the keyword set of text. Phrase dictionary matches take
// priority over single tokens, longest match first. A phrase never spans a
// clause boundary (line break, list separator or bullet).
func (e *Extractor) Extract(text string) *Set {
	text = noisePattern.ReplaceAllString(strings.ToLower(text), " ")
	set := &Set{}
	for _, clause := range strings.FieldsFunc(text, isClauseBreak) {
		e.extractClause(clause, set)
	}
	return set
}

func (e *Extractor) extractClause(clause string, set *Set) {
	raw := splitWords(clause, e.keepDot)
	stems := make([]string, len(raw))
	for i, tok := range raw {
		stems[i] = stem(tok)
	}

	for i := 0; i < len(raw); {
		if kw, n := e.matchPhrase(stems, i); n > 0 {
			set.Add(kw)
			i += n
			continue
		}
		if kw, ok := e.single(raw[i], stems[i]); ok {
			set.Add(kw)
		}
		i++
	}
}

func isClauseBreak(r rune) bool {
	switch r {
	case '\n', '\r', ',', ';', '|', '•', '·', '▪', '●', '◦', '‣', '*':
		return true
	}
	return false
}

// Normalize maps a single term to its keyword. It fails when the term
// normalizes to nothing or to more than one keyword.
func (e *Extractor) Normalize(term string) (Keyword, bool) {
	set := e.Extract(term)
	if set.Len() != 1 {
		return Keyword{}, false
	}
	kw := set.items[0]
	kw.Text = strings.ToLower(strings.TrimSpace(term))
	return kw, true
}

func (e *Extractor) matchPhrase(stems []string, start int) (Keyword, int) {
	limit := min(e.maxPhraseLen, len(stems)-start)
	for n := limit; n >= 1; n-- {
		key := strings.Join(stems[start:start+n], " ")
		if text, ok := e.phrases[key]; ok {
			return Keyword{Term: key, Text: text, Class: e.classes[key]}, n
		}
	}
	return Keyword{}, 0
}

func (e *Extractor) isStopWord(raw, stemmed string) bool {
	if _, stop := e.stopWords[raw]; stop {
		return true
	}
	_, stop := e.stopWords[stemmed]
	return stop
}

func (e *Extractor) single(raw, stemmed string) (Keyword, bool) {
	if e.isStopWord(raw, stemmed) {
		return Keyword{}, false
	}
	if !hasLetter(raw) || utf8.RuneCountInString(raw) < 2 {
		return Keyword{}, false
	}
	return Keyword{Term: stemmed, Text: raw, Class: e.classes[stemmed]}, true
}

func keepAllDots(string) bool { return true }

// splitWords lower-cases nothing itself; callers pass lower-cased text.
// '+', '#' and '.' are word runes so c++, c# and node.js survive. Trailing
// dots are always trimmed; a leading dot is kept only when keepDot accepts
// the token.
func splitWords(text string, keepDot func(string) bool) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if strings.HasPrefix(w, ".") && !keepDot(w) {
			w = strings.TrimLeft(w, ".")
		}
		if w != "" {
			tokens = append(tokens, w)
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func joinStems(tokens []string) string {
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = stem(tok)
	}
	return strings.Join(stems, " ")
}

// stem applies the Snowball English stemmer to purely alphabetic tokens.
func stem(tok string) string {
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return tok
		}
	}
	return english.Stem(tok, false)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
