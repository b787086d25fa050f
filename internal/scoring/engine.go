// Package scoring simulates company ATS screening of a segmented resume.
package scoring

import (
	"fmt"
	"slices"
	"strings"

	"resuin/internal/keywords"
	"resuin/internal/profiles"
	"resuin/internal/resume"
	"resuin/internal/types"
)

// Section scores.
const (
	SectionScoreFull    = 100.0
	SectionScoreThin    = 40.0
	SectionScoreMissing = 0.0
)

// blend weights the components of ATS compatibility for one mode.
type blend struct {
	keyword     float64
	section     float64
	readability float64
}

var modeBlends = map[types.Mode]blend{
	types.ModeRuleBased: {keyword: 0.6, section: 0.4},
	types.ModeSmart:     {keyword: 0.5, section: 0.3, readability: 0.2},
}

// canonicalOrder is the expected relative order of the sections readability
// checks. Other kinds do not take part.
var canonicalOrder = map[resume.SectionKind]int{
	resume.Contact:    0,
	resume.Experience: 1,
	resume.Education:  2,
}

// Candidate is one keyword the resume is screened for.
type Candidate struct {
	Keyword     keywords.Keyword
	Weight      float64
	FromProfile bool
	Matched     bool
}

// SectionResult scores one section.
type SectionResult struct {
	Kind         resume.SectionKind
	Required     bool
	Present      bool
	KeywordCount int
	WordCount    int
	Score        float64
	Status       types.SectionStatus
	Strength     string
	Feedback     string
}

// CompanyFit is the culture-term alignment of a resume.
type CompanyFit struct {
	Score   float64
	Matched []keywords.Keyword
	Missing []keywords.Keyword
}

// Result is the unrounded outcome of scoring one resume against one profile.
type Result struct {
	Profile *profiles.Profile
	Mode    types.Mode

	Candidates      []Candidate
	WeightedTotal   float64
	WeightedMatched float64

	KeywordMatch        float64
	SectionCompleteness float64
	Readability         float64
	ATSCompatibility    float64
	Overall             float64

	Sections   []SectionResult
	CompanyFit CompanyFit

	ATSRecommendation      string
	PassesInitialScreening bool
	ExperienceLevel        string
	EducationPreferred     bool
}

// Matched returns the matched candidates in candidate order.
func (r *Result) Matched() []Candidate {
	return r.filter(true)
}

// Missing returns the unmatched candidates in candidate order.
func (r *Result) Missing() []Candidate {
	return r.filter(false)
}

func (r *Result) filter(matched bool) []Candidate {
	var out []Candidate
	for _, c := range r.Candidates {
		if c.Matched == matched {
			out = append(out, c)
		}
	}
	return out
}

// MissingWeightShare is the fraction of candidate weight left unmatched.
func (r *Result) MissingWeightShare() float64 {
	if r.WeightedTotal == 0 {
		return 0
	}
	return (r.WeightedTotal - r.WeightedMatched) / r.WeightedTotal
}

// Engine scores resumes. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine using cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score evaluates a resume against a profile and job description keywords.
// Missing data lowers scores; only an unsupported mode is an error.
func (e *Engine) Score(r *resume.Resume, p *profiles.Profile, jd *keywords.Set, mode types.Mode) (*Result, error) {
	matcher, err := NewMatcher(mode, e.cfg)
	if err != nil {
		return nil, err
	}
	weights, ok := modeBlends[mode]
	if !ok {
		return nil, fmt.Errorf("no score blend for mode %q", mode)
	}

	resumeKeywords := r.Keywords()
	res := &Result{Profile: p, Mode: mode}

	res.Candidates = candidates(p, jd)
	for i := range res.Candidates {
		c := &res.Candidates[i]
		c.Matched = matcher.Match(c.Keyword, resumeKeywords)
		res.WeightedTotal += c.Weight
		if c.Matched {
			res.WeightedMatched += c.Weight
		}
	}
	if res.WeightedTotal > 0 {
		res.KeywordMatch = 100 * res.WeightedMatched / res.WeightedTotal
	}

	res.Sections = e.scoreSections(r, p)
	res.SectionCompleteness = completeness(res.Sections)
	res.Readability = readability(r, p)

	res.ATSCompatibility = weights.keyword*res.KeywordMatch +
		weights.section*res.SectionCompleteness +
		weights.readability*res.Readability
	res.Overall = (res.ATSCompatibility + res.KeywordMatch) / 2

	res.CompanyFit = companyFit(p, resumeKeywords, matcher)
	res.ATSRecommendation = Recommendation(res.ATSCompatibility)
	res.PassesInitialScreening = passesInitialScreening(r)
	res.ExperienceLevel = ExperienceLevel(r.ExperienceYears, p.ExperienceRequirements)
	res.EducationPreferred = r.EducationLevel != "" && slices.Contains(p.EducationPreferences, r.EducationLevel)

	return res, nil
}

// candidates merges the profile weight table with job description keywords.
// Profile entries come first and keep their weights; JD-only keywords
// weigh 1.
func candidates(p *profiles.Profile, jd *keywords.Set) []Candidate {
	out := make([]Candidate, 0, len(p.KeywordWeights)+jd.Len())
	seen := make(map[string]bool, cap(out))
	for _, wk := range p.KeywordWeights {
		seen[wk.Keyword.Term] = true
		out = append(out, Candidate{Keyword: wk.Keyword, Weight: wk.Weight, FromProfile: true})
	}
	for kw := range jd.All() {
		if seen[kw.Term] {
			continue
		}
		seen[kw.Term] = true
		out = append(out, Candidate{Keyword: kw, Weight: 1})
	}
	return out
}

// scoreSections lists required sections in profile order, then present
// optional sections in resume order.
func (e *Engine) scoreSections(r *resume.Resume, p *profiles.Profile) []SectionResult {
	results := make([]SectionResult, 0, len(p.RequiredSections)+len(r.Sections))
	for _, kind := range p.RequiredSections {
		results = append(results, e.scoreSection(r, p, kind, true))
	}
	for _, sec := range r.Sections {
		if !p.Requires(sec.Kind) {
			results = append(results, e.scoreSection(r, p, sec.Kind, false))
		}
	}
	return results
}

func (e *Engine) scoreSection(r *resume.Resume, p *profiles.Profile, kind resume.SectionKind, required bool) SectionResult {
	res := SectionResult{Kind: kind, Required: required}
	sec, ok := r.Section(kind)
	if !ok {
		res.Score = SectionScoreMissing
		res.Status = Status(res.Score)
		res.Strength = Strength(0)
		res.Feedback = fmt.Sprintf("Add a %s section; %s screens for it.", kind, p.Name)
		return res
	}

	res.Present = true
	res.KeywordCount = sec.Tokens.Len()
	res.WordCount = sec.WordCount()
	res.Strength = Strength(res.WordCount)

	adequate := res.KeywordCount >= e.cfg.MinSectionKeywords
	if kind == resume.Contact {
		adequate = adequate || resume.HasContactPattern(sec.RawText)
	}
	switch {
	case adequate:
		res.Score = SectionScoreFull
		res.Feedback = fmt.Sprintf("%s section is well populated.", kind)
	case kind == resume.Contact:
		res.Score = SectionScoreThin
		res.Feedback = "Add an email address or phone number to the Contact section."
	default:
		res.Score = SectionScoreThin
		res.Feedback = fmt.Sprintf("Expand the %s section: %d keywords found, at least %d expected.",
			kind, res.KeywordCount, e.cfg.MinSectionKeywords)
	}
	res.Status = Status(res.Score)
	return res
}

// completeness averages required section scores. With nothing required the
// resume is complete.
func completeness(sections []SectionResult) float64 {
	total, n := 0.0, 0
	for _, s := range sections {
		if s.Required {
			total += s.Score
			n++
		}
	}
	if n == 0 {
		return 100
	}
	return total / float64(n)
}

// readability scales 100 by the share of required sections present and by
// the share of in-order adjacent pairs among the canonically ordered
// sections.
func readability(r *resume.Resume, p *profiles.Profile) float64 {
	presence := 1.0
	if len(p.RequiredSections) > 0 {
		present := 0
		for _, kind := range p.RequiredSections {
			if r.Has(kind) {
				present++
			}
		}
		presence = float64(present) / float64(len(p.RequiredSections))
	}

	var ranks []int
	for _, kind := range r.Kinds() {
		if rank, ok := canonicalOrder[kind]; ok {
			ranks = append(ranks, rank)
		}
	}
	order := 1.0
	if pairs := len(ranks) - 1; pairs > 0 {
		outOfOrder := 0
		for i := 0; i < pairs; i++ {
			if ranks[i] > ranks[i+1] {
				outOfOrder++
			}
		}
		order = 1 - float64(outOfOrder)/float64(pairs)
	}

	return 100 * presence * order
}

func companyFit(p *profiles.Profile, resumeKeywords *keywords.Set, matcher Matcher) CompanyFit {
	fit := CompanyFit{Score: 100}
	if len(p.CultureTerms) == 0 {
		return fit
	}
	for _, term := range p.CultureTerms {
		if matcher.Match(term, resumeKeywords) {
			fit.Matched = append(fit.Matched, term)
		} else {
			fit.Missing = append(fit.Missing, term)
		}
	}
	fit.Score = 100 * float64(len(fit.Matched)) / float64(len(p.CultureTerms))
	return fit
}

// passesInitialScreening mirrors the coarse gate ATS systems apply before
// scoring: an email, some substance, and a populated Skills section.
func passesInitialScreening(r *resume.Resume) bool {
	skills, ok := r.Section(resume.Skills)
	return r.Contact.HasEmail() &&
		len(strings.TrimSpace(r.Text)) > 100 &&
		ok && skills.Tokens.Len() > 0
}

// Status labels a section score.
func Status(score float64) types.SectionStatus {
	switch {
	case score >= 80:
		return types.StatusGood
	case score >= 1:
		return types.StatusNeedsImprovement
	default:
		return types.StatusMissing
	}
}

// Strength grades a section by its word count.
func Strength(words int) string {
	switch {
	case words > 100:
		return "Excellent"
	case words > 50:
		return "Good"
	case words > 20:
		return "Fair"
	default:
		return "Poor"
	}
}

// Recommendation describes the likelihood of passing screening.
func Recommendation(atsCompatibility float64) string {
	switch {
	case atsCompatibility >= 80:
		return "High likelihood of passing ATS screening"
	case atsCompatibility >= 60:
		return "Moderate likelihood of passing ATS screening"
	case atsCompatibility >= 40:
		return "Low likelihood of passing ATS screening"
	default:
		return "Very low likelihood of passing ATS screening"
	}
}

// ExperienceLevel places years of experience in a profile's bands.
func ExperienceLevel(years int, req profiles.ExperienceRequirements) string {
	switch {
	case req.Senior > 0 && years >= req.Senior:
		return "Senior"
	case req.Mid > 0 && years >= req.Mid:
		return "Mid-level"
	case years >= req.Entry:
		return "Entry-level"
	default:
		return "Below entry requirements"
	}
}
