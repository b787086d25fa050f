package keywords

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, extra ...string) *Extractor {
	t.Helper()
	return NewExtractor(DefaultLexicon(), extra...)
}

func TestDefaultLexiconIsValid(t *testing.T) {
	lex := DefaultLexicon()
	require.NotNil(t, lex)
	assert.NotEmpty(t, lex.Version)
	assert.NotEmpty(t, lex.StopWords)
	assert.NotEmpty(t, lex.Phrases)
	assert.NotEmpty(t, lex.Synonyms)
	assert.Same(t, lex, DefaultLexicon())
}

func TestParseLexiconRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "missing version",
			data: `{"stopWords": [], "phrases": [], "synonyms": []}`,
		},
		{
			name: "single-term synonym class",
			data: `{"version": "1", "stopWords": [], "phrases": [], "synonyms": [{"id": "go", "terms": ["go"]}]}`,
		},
		{
			name: "unknown field",
			data: `{"version": "1", "stopWords": [], "phrases": [], "synonyms": [], "stems": {}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLexicon("lexicon.json", []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestExtractPhrasesBeforeTokens(t *testing.T) {
	ex := newTestExtractor(t)
	set := ex.Extract("Built machine learning pipelines on distributed systems")

	ml, ok := ex.Normalize("machine learning")
	require.True(t, ok)
	assert.True(t, set.Has(ml.Term))
	assert.False(t, set.Has(stem("machine")))
	assert.False(t, set.Has(stem("learning")))

	kw, ok := set.Get(ml.Term)
	require.True(t, ok)
	assert.Equal(t, "machine learning", kw.Label())
	assert.Equal(t, "machine-learning", kw.Class)
}

func TestExtractPhrasesStopAtClauseBoundaries(t *testing.T) {
	ex := newTestExtractor(t)
	phrase, ok := ex.Normalize("test automation")
	require.True(t, ok)
	testingKw, ok := ex.Normalize("testing")
	require.True(t, ok)
	automation, ok := ex.Normalize("automation")
	require.True(t, ok)

	for _, text := range []string{
		"testing\nautomation",
		"testing, automation",
		"testing; automation",
		"testing | automation",
		"• testing • automation",
		"* testing\r\n* automation",
	} {
		set := ex.Extract(text)
		assert.False(t, set.Has(phrase.Term), "%q joined into a phrase: %v", text, set.Terms())
		assert.True(t, set.Has(testingKw.Term), "%q: %v", text, set.Terms())
		assert.True(t, set.Has(automation.Term), "%q: %v", text, set.Terms())
	}

	assert.True(t, ex.Extract("Owned test automation for payments").Has(phrase.Term))
}

func TestExtractKeepsTechnicalTokens(t *testing.T) {
	ex := newTestExtractor(t)
	set := ex.Extract("C++, C#, .NET and Node.js.")

	for _, term := range []string{"c++", "c#", ".net", "node.js"} {
		assert.True(t, set.Has(term), "expected %q in %v", term, set.Terms())
	}
	assert.Equal(t, 4, set.Len())
}

func TestExtractDropsNoise(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "stop words", text: "the and of with for"},
		{name: "numbers and punctuation", text: "2020 - 2024 | 100 % + # ..."},
		{name: "contact details", text: "jane@example.com https://linkedin.com/in/jane www.example.com"},
		{name: "single letters", text: "a b c"},
		{name: "blank", text: "   \n\t"},
	}

	ex := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0, ex.Extract(tt.text).Len(), "got %v", ex.Extract(tt.text).Terms())
		})
	}
}

func TestExtractStemsAndDeduplicates(t *testing.T) {
	ex := newTestExtractor(t)

	assert.Equal(t, ex.Extract("managing database").Terms(), ex.Extract("Managed databases").Terms())

	set := ex.Extract("Go go GO golang")
	assert.Equal(t, []string{"go", "golang"}, set.Terms())
	for _, kw := range set.Keywords() {
		assert.Equal(t, "golang", kw.Class)
	}
}

func TestExtractSynonymClasses(t *testing.T) {
	ex := newTestExtractor(t)

	k8s, ok := ex.Normalize("k8s")
	require.True(t, ok)
	kube, ok := ex.Normalize("Kubernetes")
	require.True(t, ok)

	assert.NotEqual(t, k8s.Term, kube.Term)
	assert.Equal(t, "kubernetes", k8s.Class)
	assert.Equal(t, k8s.Class, kube.Class)
	assert.Equal(t, "kubernetes", kube.Text)
}

func TestExtraPhrases(t *testing.T) {
	plain := newTestExtractor(t)
	assert.Equal(t, 2, plain.Extract("event sourcing").Len())

	withPhrase := newTestExtractor(t, "Event Sourcing")
	set := withPhrase.Extract("Designed event-sourcing services")
	kw, ok := withPhrase.Normalize("event sourcing")
	require.True(t, ok)
	assert.True(t, set.Has(kw.Term))
	got, _ := set.Get(kw.Term)
	assert.Equal(t, "event sourcing", got.Text)
}

func TestNormalizeRejectsEmptyOrCompoundTerms(t *testing.T) {
	ex := newTestExtractor(t)

	_, ok := ex.Normalize("the")
	assert.False(t, ok)

	_, ok = ex.Normalize("kafka flink")
	assert.False(t, ok)
}

func TestExtractConcurrentUse(t *testing.T) {
	ex := newTestExtractor(t)
	want := ex.Extract("Kubernetes, Go and machine learning at scale").Terms()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, ex.Extract("Kubernetes, Go and machine learning at scale").Terms())
		}()
	}
	wg.Wait()
}

func TestSetUnionKeepsFirstOccurrence(t *testing.T) {
	a := NewSet(Keyword{Term: "go", Text: "go"}, Keyword{Term: "sql", Text: "sql"})
	b := NewSet(Keyword{Term: "sql", Text: "SQL"}, Keyword{Term: "aws", Text: "aws"})

	u := Union(a, nil, b)
	assert.Equal(t, []string{"go", "sql", "aws"}, u.Terms())
	kw, _ := u.Get("sql")
	assert.Equal(t, "sql", kw.Text)
	assert.False(t, NewSet().Add(Keyword{}))
}

func BenchmarkExtract(b *testing.B) {
	ex := NewExtractor(DefaultLexicon())
	text := "Senior engineer with machine learning, Kubernetes and Go experience building distributed systems on AWS."
	for b.Loop() {
		ex.Extract(text)
	}
}
