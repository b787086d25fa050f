package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resuin/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "Comparison", &ComparisonTextFormatter{})
	registry.RegisterFormatter("markdown", "Comparison", &ComparisonMarkdownFormatter{})
	registry.RegisterFormatter("text", "CompanyList", &CompanyListTextFormatter{})
	registry.RegisterFormatter("markdown", "CompanyList", &CompanyListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport:
		return "AnalysisReport"
	case types.Comparison:
		return "Comparison"
	case types.CompanyList:
		return "CompanyList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

const barWidth = 30

// ScoreBar renders score as a fixed-width bar of filled and empty cells.
func ScoreBar(score int) string {
	filled := min(max(score, 0), 100) * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// Assessment labels an overall score.
func Assessment(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 65:
		return "Fair"
	case score >= 50:
		return "Poor"
	default:
		return "Critical"
	}
}

// ReportTextFormatter handles text formatting for analysis reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== ATS ANALYSIS: %s ===\n\n", strings.ToUpper(report.CompanyName)))
	output.WriteString(fmt.Sprintf("Difficulty: %s    Mode: %s\n", report.Difficulty, report.Mode))
	output.WriteString(fmt.Sprintf("Assessment: %s\n\n", Assessment(report.OverallScore)))

	scores := []struct {
		label string
		value int
	}{
		{"Overall", report.OverallScore},
		{"ATS Compatibility", report.ATSCompatibility},
		{"Keyword Match", report.KeywordMatch},
		{"Sections", report.SectionCompleteness},
		{"Readability", report.Readability},
	}
	for _, s := range scores {
		output.WriteString(fmt.Sprintf("%-18s %s %3d/100\n", s.label, ScoreBar(s.value), s.value))
	}
	output.WriteString("\n")

	output.WriteString(fmt.Sprintf("ATS Recommendation: %s\n", report.ATSRecommendation))
	output.WriteString(fmt.Sprintf("Passes Initial Screening: %s\n\n", yesNo(report.PassesInitialScreening)))

	output.WriteString("=== SECTIONS ===\n")
	output.WriteString(fmt.Sprintf("%-12s %-9s %-6s %-18s %s\n", "Section", "Required", "Score", "Status", "Feedback"))
	for _, s := range report.SectionAnalysis {
		output.WriteString(fmt.Sprintf("%-12s %-9s %-6d %-18s %s\n", s.Section, yesNo(s.Required), s.Score, s.Status, s.Feedback))
	}
	output.WriteString("\n")

	output.WriteString("=== KEYWORDS ===\n")
	output.WriteString(fmt.Sprintf("Matched (%d): %s\n", len(report.MatchedKeywords), joinOrNone(report.MatchedKeywords)))
	output.WriteString(fmt.Sprintf("Missing (%d): %s\n\n", len(report.MissingKeywords), joinOrNone(report.MissingKeywords)))

	output.WriteString("=== COMPANY FIT ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n", report.CompanyFit.Score))
	output.WriteString(fmt.Sprintf("Strengths: %s\n", joinOrNone(report.CompanyFit.Strengths)))
	output.WriteString(fmt.Sprintf("Gaps: %s\n\n", joinOrNone(report.CompanyFit.Weaknesses)))

	summary := report.ResumeSummary
	output.WriteString("=== RESUME SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Experience: %d years (%s)\n", summary.ExperienceYears, summary.ExperienceLevel))
	if summary.EducationLevel != "" {
		output.WriteString(fmt.Sprintf("Education: %s (preferred: %s)\n", summary.EducationLevel, yesNo(summary.EducationPreferred)))
	}
	output.WriteString(fmt.Sprintf("Sections Found: %s\n\n", joinOrNone(summary.SectionsFound)))

	if len(report.Suggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n")
		for i, s := range report.Suggestions {
			output.WriteString(fmt.Sprintf("%d. [%s] %s: %s\n", i+1, s.Priority, s.Category, s.Description))
			output.WriteString(fmt.Sprintf("   Impact: %s\n", s.ImpactEstimate))
			for _, item := range s.ActionItems {
				output.WriteString(fmt.Sprintf("   - %s\n", item))
			}
		}
		output.WriteString("\n")
	} else {
		output.WriteString("No suggestions. The resume covers this profile well.\n\n")
	}

	if len(report.CompanyNotes) > 0 {
		output.WriteString("=== COMPANY NOTES ===\n")
		for _, note := range report.CompanyNotes {
			output.WriteString(fmt.Sprintf("- %s\n", note))
		}
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// ReportMarkdownFormatter handles markdown formatting for analysis reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# ATS Analysis: %s\n\n", report.CompanyName))
	output.WriteString(fmt.Sprintf("**Assessment:** %s (%d/100)  \n", Assessment(report.OverallScore), report.OverallScore))
	output.WriteString(fmt.Sprintf("**Difficulty:** %s  \n", report.Difficulty))
	output.WriteString(fmt.Sprintf("**Mode:** %s\n\n", report.Mode))

	output.WriteString("## Scores\n\n")
	output.WriteString("| Metric | Score |\n|---|---|\n")
	output.WriteString(fmt.Sprintf("| Overall | %d |\n", report.OverallScore))
	output.WriteString(fmt.Sprintf("| ATS Compatibility | %d |\n", report.ATSCompatibility))
	output.WriteString(fmt.Sprintf("| Keyword Match | %d |\n", report.KeywordMatch))
	output.WriteString(fmt.Sprintf("| Section Completeness | %d |\n", report.SectionCompleteness))
	output.WriteString(fmt.Sprintf("| Readability | %d |\n\n", report.Readability))
	output.WriteString(fmt.Sprintf("**ATS Recommendation:** %s  \n", report.ATSRecommendation))
	output.WriteString(fmt.Sprintf("**Passes Initial Screening:** %s\n\n", yesNo(report.PassesInitialScreening)))

	output.WriteString("## Sections\n\n")
	output.WriteString("| Section | Required | Score | Status | Feedback |\n|---|---|---|---|---|\n")
	for _, s := range report.SectionAnalysis {
		output.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n", s.Section, yesNo(s.Required), s.Score, s.Status, s.Feedback))
	}
	output.WriteString("\n")

	output.WriteString("## Keywords\n\n")
	output.WriteString(fmt.Sprintf("**Matched:** %s\n\n", joinOrNone(report.MatchedKeywords)))
	output.WriteString(fmt.Sprintf("**Missing:** %s\n\n", joinOrNone(report.MissingKeywords)))

	output.WriteString("## Company Fit\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", report.CompanyFit.Score))
	output.WriteString(fmt.Sprintf("**Strengths:** %s\n\n", joinOrNone(report.CompanyFit.Strengths)))
	output.WriteString(fmt.Sprintf("**Gaps:** %s\n\n", joinOrNone(report.CompanyFit.Weaknesses)))

	if len(report.Suggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		for i, s := range report.Suggestions {
			output.WriteString(fmt.Sprintf("%d. **%s** (%s): %s  \n", i+1, s.Category, s.Priority, s.Description))
			output.WriteString(fmt.Sprintf("   _Impact:_ %s\n", s.ImpactEstimate))
			for _, item := range s.ActionItems {
				output.WriteString(fmt.Sprintf("   - %s\n", item))
			}
		}
		output.WriteString("\n")
	}

	if len(report.CompanyNotes) > 0 {
		output.WriteString("## Company Notes\n\n")
		for _, note := range report.CompanyNotes {
			output.WriteString(fmt.Sprintf("- %s\n", note))
		}
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// ComparisonTextFormatter handles text formatting for company comparisons
type ComparisonTextFormatter struct{}

func (ctf *ComparisonTextFormatter) Format(data any) (string, error) {
	comparison, ok := data.(types.Comparison)
	if !ok {
		return "", fmt.Errorf("expected Comparison, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== COMPANY COMPARISON ===\n\n")
	for i, e := range comparison.Entries {
		output.WriteString(fmt.Sprintf("%2d. %-12s %s %3d/100  %-9s ATS %3d  Keywords %3d  %s\n",
			i+1, e.CompanyName, ScoreBar(e.OverallScore), e.OverallScore,
			Assessment(e.OverallScore), e.ATSCompatibility, e.KeywordMatch, e.ATSRecommendation))
	}

	return output.String(), nil
}

func (ctf *ComparisonTextFormatter) SupportedType() string {
	return "Comparison"
}

// ComparisonMarkdownFormatter handles markdown formatting for company comparisons
type ComparisonMarkdownFormatter struct{}

func (cmf *ComparisonMarkdownFormatter) Format(data any) (string, error) {
	comparison, ok := data.(types.Comparison)
	if !ok {
		return "", fmt.Errorf("expected Comparison, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Company Comparison\n\n")
	output.WriteString("| Rank | Company | Difficulty | Overall | ATS | Keywords | Recommendation |\n")
	output.WriteString("|---|---|---|---|---|---|---|\n")
	for i, e := range comparison.Entries {
		output.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %d | %d | %s |\n",
			i+1, e.CompanyName, e.Difficulty, e.OverallScore, e.ATSCompatibility, e.KeywordMatch, e.ATSRecommendation))
	}

	return output.String(), nil
}

func (cmf *ComparisonMarkdownFormatter) SupportedType() string {
	return "Comparison"
}

// CompanyListTextFormatter handles text formatting for the profile catalog
type CompanyListTextFormatter struct{}

func (cltf *CompanyListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(types.CompanyList)
	if !ok {
		return "", fmt.Errorf("expected CompanyList, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== COMPANY PROFILES (v%s) ===\n\n", list.Version))
	for _, c := range list.Companies {
		output.WriteString(fmt.Sprintf("%-12s %-12s %-7s %-11s %2d keywords  requires: %s\n",
			c.ID, c.Name, c.Difficulty, c.DefaultMode, c.Keywords, joinOrNone(c.RequiredSections)))
	}

	return output.String(), nil
}

func (cltf *CompanyListTextFormatter) SupportedType() string {
	return "CompanyList"
}

// CompanyListMarkdownFormatter handles markdown formatting for the profile catalog
type CompanyListMarkdownFormatter struct{}

func (clmf *CompanyListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(types.CompanyList)
	if !ok {
		return "", fmt.Errorf("expected CompanyList, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Company Profiles (v%s)\n\n", list.Version))
	output.WriteString("| ID | Name | ATS | Difficulty | Default Mode | Keywords | Required Sections |\n")
	output.WriteString("|---|---|---|---|---|---|---|\n")
	for _, c := range list.Companies {
		output.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %s |\n",
			c.ID, c.Name, c.ATSType, c.Difficulty, c.DefaultMode, c.Keywords, strings.Join(c.RequiredSections, ", ")))
	}

	return output.String(), nil
}

func (clmf *CompanyListMarkdownFormatter) SupportedType() string {
	return "CompanyList"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
