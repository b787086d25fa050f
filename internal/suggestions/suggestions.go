// Package suggestions turns scoring gaps into prioritized advice.
package suggestions

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"resuin/internal/keywords"
	"resuin/internal/scoring"
	"resuin/internal/types"
)

const (
	// TopMissingKeywords is how many missing keywords one suggestion names.
	TopMissingKeywords = 3
	// TopCultureTerms is how many unmet culture terms one suggestion names.
	TopCultureTerms = 3
	// HighMissingShare is the missing weight share at which keyword advice
	// becomes High priority.
	HighMissingShare = 0.20
	// LowCompanyFit is the company fit below which culture advice is given.
	LowCompanyFit = 50.0
	// MaxKeywordActions caps the missing keywords listed as action items.
	MaxKeywordActions = 10
)

// Categories.
const (
	CategoryKeywords = "Keywords"
	CategoryCulture  = "Cultural Alignment"
)

// Suggest derives suggestions from a scoring result. Rules run in a fixed
// order and the output is stable-sorted by priority, so equal priorities
// keep detection order.
func Suggest(res *scoring.Result) []types.Suggestion {
	var out []types.Suggestion

	for _, s := range res.Sections {
		if s.Required && s.Status == types.StatusMissing {
			out = append(out, types.Suggestion{
				Title:          fmt.Sprintf("Add %s section", s.Kind),
				Category:       s.Kind.String(),
				Priority:       types.PriorityHigh,
				Description:    fmt.Sprintf("Add a %s section.", s.Kind),
				ImpactEstimate: "required by target company profile.",
			})
		}
	}

	if s, ok := missingKeywords(res); ok {
		out = append(out, s)
	}

	for _, s := range res.Sections {
		if s.Status == types.StatusNeedsImprovement {
			out = append(out, types.Suggestion{
				Title:          fmt.Sprintf("Improve %s section", s.Kind),
				Category:       s.Kind.String(),
				Priority:       types.PriorityMedium,
				Description:    s.Feedback,
				ImpactEstimate: fmt.Sprintf("raises the %s section score from %.0f to 100.", s.Kind, s.Score),
				ActionItems: []string{
					fmt.Sprintf("Expand the %s section with specifics", s.Kind),
					"Add quantifiable achievements",
					"Use terms from the job description",
				},
			})
		}
	}

	if res.CompanyFit.Score < LowCompanyFit && len(res.CompanyFit.Missing) > 0 {
		unmet := res.CompanyFit.Missing[:min(TopCultureTerms, len(res.CompanyFit.Missing))]
		out = append(out, types.Suggestion{
			Title:          "Show cultural alignment",
			Category:       CategoryCulture,
			Priority:       types.PriorityLow,
			Description:    fmt.Sprintf("Show cultural alignment with %s by describing %s.", res.Profile.Name, labels(unmet)),
			ImpactEstimate: fmt.Sprintf("company fit is %.0f%%.", res.CompanyFit.Score),
			ActionItems:    labelList(res.CompanyFit.Missing),
		})
	}

	slices.SortStableFunc(out, func(a, b types.Suggestion) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
	return out
}

func missingKeywords(res *scoring.Result) (types.Suggestion, bool) {
	missing := res.Missing()
	if len(missing) == 0 {
		return types.Suggestion{}, false
	}
	slices.SortStableFunc(missing, func(a, b scoring.Candidate) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	kws := make([]keywords.Keyword, min(MaxKeywordActions, len(missing)))
	for i := range kws {
		kws[i] = missing[i].Keyword
	}
	top := kws[:min(TopMissingKeywords, len(kws))]

	share := res.MissingWeightShare()
	priority := types.PriorityMedium
	if share >= HighMissingShare {
		priority = types.PriorityHigh
	}
	return types.Suggestion{
		Title:          "Add missing company keywords",
		Category:       CategoryKeywords,
		Priority:       priority,
		Description:    fmt.Sprintf("Add missing keywords where they reflect real experience: %s.", labels(top)),
		ImpactEstimate: fmt.Sprintf("missing keywords carry %.0f%% of the keyword weight.", 100*share),
		ActionItems:    labelList(kws),
	}, true
}

func labels(kws []keywords.Keyword) string {
	return strings.Join(labelList(kws), ", ")
}

func labelList(kws []keywords.Keyword) []string {
	parts := make([]string, len(kws))
	for i, kw := range kws {
		parts[i] = kw.Label()
	}
	return parts
}
