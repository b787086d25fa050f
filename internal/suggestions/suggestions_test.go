package suggestions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/keywords"
	"resuin/internal/profiles"
	"resuin/internal/resume"
	"resuin/internal/scoring"
	"resuin/internal/types"
)

func kw(text string) keywords.Keyword {
	return keywords.Keyword{Term: text, Text: text}
}

func candidate(text string, weight float64, matched bool) scoring.Candidate {
	return scoring.Candidate{Keyword: kw(text), Weight: weight, FromProfile: true, Matched: matched}
}

func result(cands []scoring.Candidate, sections []scoring.SectionResult, fit scoring.CompanyFit) *scoring.Result {
	res := &scoring.Result{
		Profile:    &profiles.Profile{ID: "acme", Name: "Acme"},
		Candidates: cands,
		Sections:   sections,
		CompanyFit: fit,
	}
	for _, c := range cands {
		res.WeightedTotal += c.Weight
		if c.Matched {
			res.WeightedMatched += c.Weight
		}
	}
	return res
}

func TestSuggestOrderAndRules(t *testing.T) {
	res := result(
		[]scoring.Candidate{
			candidate("java", 0.5, false),
			candidate("kubernetes", 1, false),
			candidate("python", 0.5, true),
			candidate("terraform", 0.5, false),
			candidate("rust", 0.3, false),
		},
		[]scoring.SectionResult{
			{Kind: resume.Contact, Required: true, Score: 0, Status: types.StatusMissing},
			{Kind: resume.Experience, Required: true, Score: 40, Status: types.StatusNeedsImprovement, Feedback: "Expand the Experience section."},
			{Kind: resume.Education, Required: true, Score: 0, Status: types.StatusMissing},
			{Kind: resume.Projects, Score: 40, Status: types.StatusNeedsImprovement, Feedback: "Expand the Projects section."},
		},
		scoring.CompanyFit{Score: 25, Missing: []keywords.Keyword{kw("ownership"), kw("frugality"), kw("bias for action"), kw("dive deep")}},
	)

	got := Suggest(res)
	require.Len(t, got, 6)

	assert.Equal(t, "Contact", got[0].Category)
	assert.Equal(t, types.PriorityHigh, got[0].Priority)
	assert.Equal(t, "required by target company profile.", got[0].ImpactEstimate)
	assert.Equal(t, "Education", got[1].Category)

	assert.Equal(t, CategoryKeywords, got[2].Category)
	assert.Equal(t, types.PriorityHigh, got[2].Priority)
	// Weight descending, ties in candidate order.
	assert.Contains(t, got[2].Description, "kubernetes, java, terraform.")
	assert.NotContains(t, got[2].Description, "rust")
	assert.Equal(t, "Add missing company keywords", got[2].Title)
	assert.Equal(t, []string{"kubernetes", "java", "terraform", "rust"}, got[2].ActionItems)

	assert.Equal(t, "Experience", got[3].Category)
	assert.Equal(t, types.PriorityMedium, got[3].Priority)
	assert.Equal(t, "Projects", got[4].Category)

	assert.Equal(t, CategoryCulture, got[5].Category)
	assert.Equal(t, types.PriorityLow, got[5].Priority)
	assert.Contains(t, got[5].Description, "ownership, frugality, bias for action.")
	assert.NotContains(t, got[5].Description, "dive deep")
	assert.Equal(t, []string{"ownership", "frugality", "bias for action", "dive deep"}, got[5].ActionItems)

	assert.Equal(t, "Add Contact section", got[0].Title)
	assert.Empty(t, got[0].ActionItems)
	assert.Equal(t, "Improve Experience section", got[3].Title)
	assert.Len(t, got[3].ActionItems, 3)
}

func TestSuggestKeywordPriority(t *testing.T) {
	tests := []struct {
		name  string
		cands []scoring.Candidate
		want  types.Priority
	}{
		{
			name:  "quarter of the weight missing",
			cands: []scoring.Candidate{candidate("go", 0.75, true), candidate("sql", 0.25, false)},
			want:  types.PriorityHigh,
		},
		{
			name:  "small share missing",
			cands: []scoring.Candidate{candidate("go", 0.875, true), candidate("sql", 0.125, false)},
			want:  types.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(result(tt.cands, nil, scoring.CompanyFit{Score: 100}))
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Priority)
		})
	}
}

func TestSuggestKeywordActionItemsCapped(t *testing.T) {
	var cands []scoring.Candidate
	for i := range MaxKeywordActions + 5 {
		cands = append(cands, candidate(fmt.Sprintf("term%02d", i), 1, false))
	}

	got := Suggest(result(cands, nil, scoring.CompanyFit{Score: 100}))
	require.Len(t, got, 1)
	assert.Len(t, got[0].ActionItems, MaxKeywordActions)
	assert.Equal(t, "term00", got[0].ActionItems[0])
	assert.Contains(t, got[0].Description, "term00, term01, term02.")
}

func TestSuggestNothingToSay(t *testing.T) {
	res := result(
		[]scoring.Candidate{candidate("go", 1, true)},
		[]scoring.SectionResult{{Kind: resume.Skills, Required: true, Score: 100, Status: types.StatusGood}},
		scoring.CompanyFit{Score: 50},
	)
	assert.Empty(t, Suggest(res))
}

func TestSuggestIgnoresMissingOptionalSections(t *testing.T) {
	res := result(nil,
		[]scoring.SectionResult{{Kind: resume.Projects, Score: 0, Status: types.StatusMissing}},
		scoring.CompanyFit{Score: 100},
	)
	assert.Empty(t, Suggest(res))
}
