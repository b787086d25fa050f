// Package report turns scoring results into analysis reports.
package report

import (
	"math"

	"resuin/internal/keywords"
	"resuin/internal/resume"
	"resuin/internal/scoring"
	"resuin/internal/types"
)

// Assemble builds the report for one analysis. It copies every value out of
// its inputs and is the only place scores are rounded.
func Assemble(r *resume.Resume, res *scoring.Result, suggestions []types.Suggestion) types.AnalysisReport {
	p := res.Profile

	report := types.AnalysisReport{
		CompanyID:              p.ID,
		CompanyName:            p.Name,
		Difficulty:             string(p.Difficulty),
		Mode:                   res.Mode,
		OverallScore:           Round(res.Overall),
		ATSCompatibility:       Round(res.ATSCompatibility),
		KeywordMatch:           Round(res.KeywordMatch),
		SectionCompleteness:    Round(res.SectionCompleteness),
		Readability:            Round(res.Readability),
		ATSRecommendation:      res.ATSRecommendation,
		PassesInitialScreening: res.PassesInitialScreening,
		MatchedKeywords:        candidateLabels(res.Matched()),
		MissingKeywords:        candidateLabels(res.Missing()),
		Suggestions:            append([]types.Suggestion{}, suggestions...),
		CompanyFit: types.CompanyFit{
			Score:      Round(res.CompanyFit.Score),
			Strengths:  keywordLabels(res.CompanyFit.Matched),
			Weaknesses: keywordLabels(res.CompanyFit.Missing),
		},
		SectionAnalysis: make([]types.SectionScore, len(res.Sections)),
		CompanyNotes:    append([]string{}, p.Notes...),
		ResumeSummary: types.ResumeSummary{
			Contact: types.ContactSummary{
				Emails:   append([]string(nil), r.Contact.Emails...),
				Phones:   append([]string(nil), r.Contact.Phones...),
				LinkedIn: append([]string(nil), r.Contact.LinkedIn...),
			},
			ExperienceYears:    r.ExperienceYears,
			ExperienceLevel:    res.ExperienceLevel,
			EducationLevel:     r.EducationLevel,
			EducationPreferred: res.EducationPreferred,
			SectionsFound:      make([]string, len(r.Sections)),
		},
	}

	for i, s := range res.Sections {
		report.SectionAnalysis[i] = types.SectionScore{
			Section:      s.Kind.String(),
			Required:     s.Required,
			Present:      s.Present,
			KeywordCount: s.KeywordCount,
			WordCount:    s.WordCount,
			Score:        Round(s.Score),
			Status:       s.Status,
			Strength:     s.Strength,
			Feedback:     s.Feedback,
		}
	}
	for i, s := range r.Sections {
		report.ResumeSummary.SectionsFound[i] = s.Kind.String()
	}

	return report
}

// Entry summarizes a report as a comparison row.
func Entry(r types.AnalysisReport) types.ComparisonEntry {
	return types.ComparisonEntry{
		CompanyID:         r.CompanyID,
		CompanyName:       r.CompanyName,
		Difficulty:        r.Difficulty,
		Mode:              r.Mode,
		OverallScore:      r.OverallScore,
		ATSCompatibility:  r.ATSCompatibility,
		KeywordMatch:      r.KeywordMatch,
		ATSRecommendation: r.ATSRecommendation,
	}
}

// Round rounds a score half away from zero and clamps it to [0,100].
func Round(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

func candidateLabels(cands []scoring.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Keyword.Label()
	}
	return out
}

func keywordLabels(kws []keywords.Keyword) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = kw.Label()
	}
	return out
}
