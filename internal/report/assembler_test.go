package report

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/keywords"
	"resuin/internal/profiles"
	"resuin/internal/resume"
	"resuin/internal/scoring"
	"resuin/internal/types"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{33.333, 33},
		{66.5, 67},
		{99.5, 100},
		{100.4, 100},
		{-3, 0},
		{250, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in), "Round(%v)", tt.in)
	}
}

func sample() (*resume.Resume, *scoring.Result) {
	r := &resume.Resume{
		Sections: []resume.Section{
			{Kind: resume.Contact, RawText: "jane@example.com"},
			{Kind: resume.Skills, RawText: "go, sql"},
		},
		Contact:         resume.ContactInfo{Emails: []string{"jane@example.com"}},
		ExperienceYears: 4,
		EducationLevel:  "bachelors",
	}
	res := &scoring.Result{
		Profile: &profiles.Profile{ID: "acme", Name: "Acme", Difficulty: profiles.Medium, Notes: []string{"Uses Workday"}},
		Mode:    types.ModeSmart,
		Candidates: []scoring.Candidate{
			{Keyword: keywords.Keyword{Term: "go", Text: "go"}, Weight: 1, Matched: true},
			{Keyword: keywords.Keyword{Term: "kubernet", Text: "kubernetes"}, Weight: 1},
		},
		KeywordMatch:        50,
		SectionCompleteness: 66.66666,
		Readability:         100,
		ATSCompatibility:    64.9999,
		Overall:             57.49995,
		Sections: []scoring.SectionResult{
			{Kind: resume.Contact, Required: true, Present: true, Score: 100, Status: types.StatusGood},
			{Kind: resume.Education, Required: true, Score: 0, Status: types.StatusMissing},
		},
		CompanyFit: scoring.CompanyFit{
			Score:   33.3,
			Matched: []keywords.Keyword{{Term: "custom obsess", Text: "customer obsession"}},
		},
		ATSRecommendation: "Moderate likelihood of passing ATS screening",
		ExperienceLevel:   "Mid-level",
	}
	return r, res
}

func TestAssemble(t *testing.T) {
	r, res := sample()
	sugg := []types.Suggestion{{Category: "Education", Priority: types.PriorityHigh}}

	got := Assemble(r, res, sugg)

	assert.Equal(t, "acme", got.CompanyID)
	assert.Equal(t, "Medium", got.Difficulty)
	assert.Equal(t, types.ModeSmart, got.Mode)
	assert.Equal(t, 57, got.OverallScore)
	assert.Equal(t, 65, got.ATSCompatibility)
	assert.Equal(t, 50, got.KeywordMatch)
	assert.Equal(t, 67, got.SectionCompleteness)
	assert.Equal(t, 100, got.Readability)
	assert.Equal(t, []string{"go"}, got.MatchedKeywords)
	assert.Equal(t, []string{"kubernetes"}, got.MissingKeywords)
	assert.Equal(t, 33, got.CompanyFit.Score)
	assert.Equal(t, []string{"customer obsession"}, got.CompanyFit.Strengths)
	assert.Empty(t, got.CompanyFit.Weaknesses)
	require.Len(t, got.SectionAnalysis, 2)
	assert.Equal(t, "Education", got.SectionAnalysis[1].Section)
	assert.Equal(t, types.StatusMissing, got.SectionAnalysis[1].Status)
	assert.Equal(t, []string{"Contact", "Skills"}, got.ResumeSummary.SectionsFound)
	assert.Equal(t, "Mid-level", got.ResumeSummary.ExperienceLevel)
	assert.Equal(t, []string{"Uses Workday"}, got.CompanyNotes)
	assert.Equal(t, sugg, got.Suggestions)
}

func TestAssembleCopiesInputs(t *testing.T) {
	r, res := sample()
	sugg := []types.Suggestion{{Category: "Education"}}

	got := Assemble(r, res, sugg)
	sugg[0].Category = "changed"
	res.Profile.Notes[0] = "changed"
	r.Contact.Emails[0] = "changed"

	assert.Equal(t, "Education", got.Suggestions[0].Category)
	assert.Equal(t, "Uses Workday", got.CompanyNotes[0])
	assert.Equal(t, "jane@example.com", got.ResumeSummary.Contact.Emails[0])
}

func TestAssembleEmptyListsEncodeAsArrays(t *testing.T) {
	r, res := sample()
	res.Candidates = nil
	res.Profile.Notes = nil

	data, err := json.Marshal(Assemble(r, res, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matchedKeywords":[]`)
	assert.Contains(t, string(data), `"suggestions":[]`)
	assert.Contains(t, string(data), `"companyNotes":[]`)
}

func TestEntry(t *testing.T) {
	r, res := sample()
	e := Entry(Assemble(r, res, nil))
	assert.Equal(t, "acme", e.CompanyID)
	assert.Equal(t, 57, e.OverallScore)
	assert.Equal(t, "Moderate likelihood of passing ATS screening", e.ATSRecommendation)
}
