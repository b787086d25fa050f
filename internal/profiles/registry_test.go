package profiles

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resuinErrors "resuin/internal/errors"
	"resuin/internal/keywords"
	"resuin/internal/resume"
	"resuin/internal/types"
)

func testCatalog() *Catalog {
	return &Catalog{
		Version: "test",
		Profiles: []Spec{
			{
				ID:               "acme",
				Name:             "Acme",
				Difficulty:       "Medium",
				DefaultMode:      "rule_based",
				RequiredSections: []string{"Contact", "Experience", "Education"},
				KeywordWeights: []WeightSpec{
					{Term: "Kubernetes", Weight: 1},
					{Term: "event sourcing", Weight: 0.5},
					{Term: "databases", Weight: 0.8},
					{Term: "database", Weight: 0.2},
				},
				CultureTerms: []string{"ownership", "customer obsession"},
			},
		},
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	require.NotNil(t, reg)
	assert.Same(t, reg, Default())
	assert.Equal(t, []string{"amazon", "google", "microsoft", "tcs", "infosys", "wipro", "ibm", "accenture", "generic"}, reg.IDs())

	amazon, err := reg.Get("amazon")
	require.NoError(t, err)
	assert.Equal(t, "Amazon", amazon.Name)
	assert.Equal(t, Hard, amazon.Difficulty)
	assert.Equal(t, types.ModeRuleBased, amazon.DefaultMode)
	assert.True(t, amazon.Requires(resume.Experience))
	assert.False(t, amazon.Requires(resume.Projects))
	assert.Len(t, amazon.Notes, 2)

	for _, p := range reg.Profiles() {
		assert.NotEmpty(t, p.KeywordWeights, p.ID)
		assert.NotEmpty(t, p.CultureTerms, p.ID)
		assert.NotEmpty(t, p.RequiredSections, p.ID)
	}
}

func TestDefaultRegistryConcurrentInit(t *testing.T) {
	var wg sync.WaitGroup
	regs := make([]*Registry, 8)
	for i := range regs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			regs[i] = Default()
		}()
	}
	wg.Wait()
	for _, r := range regs {
		assert.Same(t, regs[0], r)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg, err := NewRegistry(testCatalog(), keywords.DefaultLexicon())
	require.NoError(t, err)

	_, err = reg.Get("amazon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, resuinErrors.ErrUnknownCompanyProfile))

	_, err = reg.Get("Acme")
	assert.True(t, errors.Is(err, resuinErrors.ErrUnknownCompanyProfile))
}

func TestNewRegistryNormalizesTables(t *testing.T) {
	reg, err := NewRegistry(testCatalog(), keywords.DefaultLexicon())
	require.NoError(t, err)

	p, err := reg.Get("acme")
	require.NoError(t, err)

	// "database" folds onto "databases" and is dropped.
	require.Len(t, p.KeywordWeights, 3)
	assert.Equal(t, "kubernetes", p.KeywordWeights[0].Keyword.Text)
	assert.Equal(t, "event sourcing", p.KeywordWeights[1].Keyword.Text)
	assert.InDelta(t, 0.8, p.KeywordWeights[2].Weight, 1e-9)

	w, ok := p.Weight(p.KeywordWeights[1].Keyword.Term)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, w, 1e-9)

	assert.Equal(t, []resume.SectionKind{resume.Contact, resume.Experience, resume.Education}, p.RequiredSections)
	require.Len(t, p.CultureTerms, 2)
	assert.Equal(t, "customer-obsession", p.CultureTerms[1].Class)

	// Profile phrases become part of the shared vocabulary.
	set := reg.Extractor().Extract("Built event sourcing pipelines")
	assert.True(t, set.Has(p.KeywordWeights[1].Keyword.Term))
}

func TestNewRegistryRejectsInvalidProfiles(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{
			name: "duplicate id",
			mutate: func(c *Catalog) {
				c.Profiles = append(c.Profiles, c.Profiles[0])
			},
		},
		{
			name: "bad section",
			mutate: func(c *Catalog) {
				c.Profiles[0].RequiredSections = []string{"Hobbies"}
			},
		},
		{
			name: "bad difficulty",
			mutate: func(c *Catalog) {
				c.Profiles[0].Difficulty = "Brutal"
			},
		},
		{
			name: "bad mode",
			mutate: func(c *Catalog) {
				c.Profiles[0].DefaultMode = "psychic"
			},
		},
		{
			name: "stop word keyword",
			mutate: func(c *Catalog) {
				c.Profiles[0].KeywordWeights = append(c.Profiles[0].KeywordWeights, WeightSpec{Term: "the", Weight: 1})
			},
		},
		{
			name: "zero weight",
			mutate: func(c *Catalog) {
				c.Profiles[0].KeywordWeights[0].Weight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog()
			tt.mutate(c)
			_, err := NewRegistry(c, keywords.DefaultLexicon())
			require.Error(t, err)
			assert.Equal(t, resuinErrors.ErrCodeInvalidData, resuinErrors.CodeOf(err))
		})
	}
}

func TestParseCatalogValidatesSchema(t *testing.T) {
	_, err := ParseCatalog("profiles.json", []byte(`{"version": "1", "profiles": [{"id": "Bad Id", "name": "x", "difficulty": "Easy", "requiredSections": [], "keywordWeights": [{"term": "go", "weight": 2}], "cultureTerms": []}]}`))
	require.Error(t, err)
	assert.Equal(t, resuinErrors.ErrCodeInvalidData, resuinErrors.CodeOf(err))
}

func TestLoadFileYAML(t *testing.T) {
	data := `version: "custom-1"
profiles:
  - id: startup
    name: Startup
    difficulty: Easy
    requiredSections: [Contact, Experience]
    keywordWeights:
      - term: go
        weight: 1
      - term: postgres
        weight: 0.5
    cultureTerms: [ownership]
`
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	reg, err := LoadFile(path, keywords.DefaultLexicon())
	require.NoError(t, err)
	assert.Equal(t, "custom-1", reg.Version())
	assert.Equal(t, []string{"startup"}, reg.IDs())

	p, err := reg.Get("startup")
	require.NoError(t, err)
	assert.Equal(t, types.ModeSmart, p.DefaultMode)

	list := reg.Summaries()
	require.Len(t, list.Companies, 1)
	assert.Equal(t, []string{"Contact", "Experience"}, list.Companies[0].RequiredSections)
	assert.Equal(t, 2, list.Companies[0].Keywords)
}
