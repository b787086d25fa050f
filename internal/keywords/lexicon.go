package keywords

import (
	_ "embed"
	"fmt"
	"sync"

	"resuin/internal/schemas"
)

//go:embed lexicon.json
var defaultLexiconData []byte

//go:embed lexicon.schema.json
var lexiconSchema []byte

// Lexicon is the versioned vocabulary data driving extraction.
type Lexicon struct {
	Version   string         `mapstructure:"version"`
	StopWords []string       `mapstructure:"stopWords"`
	Phrases   []string       `mapstructure:"phrases"`
	Synonyms  []SynonymClass `mapstructure:"synonyms"`
}

// SynonymClass groups terms that Smart mode treats as equivalent.
type SynonymClass struct {
	ID    string   `mapstructure:"id"`
	Terms []string `mapstructure:"terms"`
}

var (
	defaultLexicon     *Lexicon
	defaultLexiconOnce sync.Once
)

// DefaultLexicon returns the embedded lexicon, parsed once per process.
// It panics if the embedded data is invalid, which tests guard against.
func DefaultLexicon() *Lexicon {
	defaultLexiconOnce.Do(func() {
		lex, err := ParseLexicon("lexicon.json", defaultLexiconData)
		if err != nil {
			panic(fmt.Sprintf("embedded lexicon: %v", err))
		}
		defaultLexicon = lex
	})
	return defaultLexicon
}

// ParseLexicon validates and decodes lexicon data in JSON or YAML form.
func ParseLexicon(name string, data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := schemas.Load("lexicon", name, lexiconSchema, data, &lex); err != nil {
		return nil, err
	}
	return &lex, nil
}

// LoadLexiconFile reads a lexicon override from disk.
func LoadLexiconFile(path string) (*Lexicon, error) {
	var lex Lexicon
	if err := schemas.LoadFile("lexicon", path, lexiconSchema, &lex); err != nil {
		return nil, err
	}
	return &lex, nil
}
