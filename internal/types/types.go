package types

import "fmt"

// Mode selects the keyword matching policy.
type Mode string

const (
	// ModeRuleBased matches keywords exactly, like a strict legacy parser.
	ModeRuleBased Mode = "rule_based"
	// ModeSmart also accepts synonyms and near spellings.
	ModeSmart Mode = "smart"
)

// Modes lists the supported modes.
func Modes() []Mode {
	return []Mode{ModeRuleBased, ModeSmart}
}

// ParseMode validates a mode name. The empty string is returned unchanged
// so callers can fall back to a profile default.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRuleBased, ModeSmart:
		return Mode(s), nil
	case "rule", "rule-based", "rulebased":
		return ModeRuleBased, nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be %q or %q)", s, ModeRuleBased, ModeSmart)
	}
}

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities, High first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// SectionStatus labels a section score.
type SectionStatus string

const (
	StatusGood             SectionStatus = "Good"
	StatusNeedsImprovement SectionStatus = "Needs Improvement"
	StatusMissing          SectionStatus = "Missing"
)

// AnalyzeResumeInput represents the input for analyzing a resume
type AnalyzeResumeInput struct {
	ResumeText     string `json:"resumeText"` // blank text fails as EMPTY_INPUT
	CompanyID      string `json:"companyId" validate:"required,max=64"`
	JobDescription string `json:"jobDescription"`
	Mode           Mode   `json:"mode" validate:"omitempty,oneof=rule_based smart"`
}

// CompareResumeInput represents the input for comparing a resume across companies
type CompareResumeInput struct {
	ResumeText     string `json:"resumeText"` // blank text fails as EMPTY_INPUT
	JobDescription string `json:"jobDescription"`
	Mode           Mode   `json:"mode" validate:"omitempty,oneof=rule_based smart"`
}

// SectionScore is the per-section result of an analysis
type SectionScore struct {
	Section      string        `json:"section"`
	Required     bool          `json:"required"`
	Present      bool          `json:"present"`
	KeywordCount int           `json:"keywordCount"`
	WordCount    int           `json:"wordCount"`
	Score        int           `json:"score"`
	Status       SectionStatus `json:"status"`
	Strength     string        `json:"strength"`
	Feedback     string        `json:"feedback"`
}

// Suggestion is an actionable improvement
type Suggestion struct {
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Priority       Priority `json:"priority"`
	Description    string   `json:"description"`
	ImpactEstimate string   `json:"impactEstimate"`
	ActionItems    []string `json:"actionItems,omitempty"`
}

// CompanyFit represents cultural alignment with a company
type CompanyFit struct {
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// ContactSummary lists the contact details found in the resume
type ContactSummary struct {
	Emails   []string `json:"emails,omitempty"`
	Phones   []string `json:"phones,omitempty"`
	LinkedIn []string `json:"linkedin,omitempty"`
}

// ResumeSummary describes facts derived from the resume text
type ResumeSummary struct {
	Contact            ContactSummary `json:"contact"`
	ExperienceYears    int            `json:"experienceYears"`
	ExperienceLevel    string         `json:"experienceLevel"`
	EducationLevel     string         `json:"educationLevel,omitempty"`
	EducationPreferred bool           `json:"educationPreferred"`
	SectionsFound      []string       `json:"sectionsFound"`
}

// AnalysisReport is the result of analyzing one resume against one company
type AnalysisReport struct {
	CompanyID              string         `json:"companyId"`
	CompanyName            string         `json:"companyName"`
	Difficulty             string         `json:"difficulty"`
	Mode                   Mode           `json:"mode"`
	OverallScore           int            `json:"overallScore"`
	ATSCompatibility       int            `json:"atsCompatibility"`
	KeywordMatch           int            `json:"keywordMatch"`
	SectionCompleteness    int            `json:"sectionCompleteness"`
	Readability            int            `json:"readability"`
	ATSRecommendation      string         `json:"atsRecommendation"`
	PassesInitialScreening bool           `json:"passesInitialScreening"`
	MatchedKeywords        []string       `json:"matchedKeywords"`
	MissingKeywords        []string       `json:"missingKeywords"`
	Suggestions            []Suggestion   `json:"suggestions"`
	CompanyFit             CompanyFit     `json:"companyFit"`
	SectionAnalysis        []SectionScore `json:"sectionAnalysis"`
	CompanyNotes           []string       `json:"companyNotes"`
	ResumeSummary          ResumeSummary  `json:"resumeSummary"`
}

// ComparisonEntry is one company's row in a cross-company comparison
type ComparisonEntry struct {
	CompanyID         string `json:"companyId"`
	CompanyName       string `json:"companyName"`
	Difficulty        string `json:"difficulty"`
	Mode              Mode   `json:"mode"`
	OverallScore      int    `json:"overallScore"`
	ATSCompatibility  int    `json:"atsCompatibility"`
	KeywordMatch      int    `json:"keywordMatch"`
	ATSRecommendation string `json:"atsRecommendation"`
}

// Comparison ranks companies by how well a resume scores against them
type Comparison struct {
	Entries []ComparisonEntry `json:"entries"`
}

// CompanySummary describes a registered company profile
type CompanySummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ATSType          string   `json:"atsType"`
	Difficulty       string   `json:"difficulty"`
	DefaultMode      Mode     `json:"defaultMode"`
	RequiredSections []string `json:"requiredSections"`
	Keywords         int      `json:"keywords"`
}

// CompanyList is the catalog of registered company profiles
type CompanyList struct {
	Version   string           `json:"version"`
	Companies []CompanySummary `json:"companies"`
}
