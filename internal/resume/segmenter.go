package resume

import (
	"regexp"
	"strings"
	"unicode"

	"resuin/internal/keywords"
)

// headingPatterns are matched as whole lower-case word sequences.
var headingPatterns = map[SectionKind][]string{
	Contact:    {"contact", "contact information", "contact info", "contact details", "personal details", "personal information"},
	Summary:    {"summary", "professional summary", "career summary", "profile", "professional profile", "objective", "career objective", "about me"},
	Skills:     {"skills", "technical skills", "core competencies", "competencies", "technologies", "tech stack", "expertise"},
	Experience: {"experience", "work experience", "professional experience", "work history", "employment history", "employment", "career history"},
	Education:  {"education", "academic background", "academic qualifications", "qualifications"},
	Projects:   {"projects", "personal projects", "key projects", "portfolio"},
	Other:      {"certifications", "awards", "publications", "languages", "interests", "volunteering", "achievements"},
}

// headingFiller may accompany a pattern on a heading line.
var headingFiller = map[string]bool{
	"and": true, "my": true, "key": true, "relevant": true, "selected": true,
	"additional": true, "other": true, "core": true, "tools": true, "section": true,
}

const maxHeadingWords = 5

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\(?\d[\d\s().-]{7,}\d`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/[A-Za-z0-9\-_/]+`)
	yearPattern     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// Segmenter splits resume text into sections and tokenizes each one.
type Segmenter struct {
	extractor *keywords.Extractor
}

// NewSegmenter returns a segmenter tokenizing sections with extractor.
func NewSegmenter(extractor *keywords.Extractor) *Segmenter {
	return &Segmenter{extractor: extractor}
}

type pendingSection struct {
	kind  SectionKind
	lines []string
}

// Segment builds a Resume from plain text. It never fails: text without
// any recognizable heading becomes a single Other section.
func (s *Segmenter) Segment(text string) *Resume {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var (
		sections []*pendingSection
		byKind   = make(map[SectionKind]*pendingSection)
		current  *pendingSection
		preamble []string
		found    bool
	)

	open := func(kind SectionKind) *pendingSection {
		if sec, ok := byKind[kind]; ok {
			return sec
		}
		sec := &pendingSection{kind: kind}
		byKind[kind] = sec
		sections = append(sections, sec)
		return sec
	}

	for _, line := range lines {
		kind, rest, ok := detectHeading(line)
		if !ok {
			if current == nil {
				preamble = append(preamble, line)
			} else {
				current.lines = append(current.lines, line)
			}
			continue
		}

		if !found {
			found = true
			if strings.TrimSpace(strings.Join(preamble, "\n")) != "" {
				sec := open(preambleKind(preamble))
				sec.lines = append(sec.lines, preamble...)
			}
		}
		// An inline heading inside an open section ("Technologies: Go" under
		// Experience) only claims its own line.
		if rest != "" && current != nil {
			sec := open(kind)
			sec.lines = append(sec.lines, rest)
			continue
		}
		current = open(kind)
		if rest != "" {
			current.lines = append(current.lines, rest)
		}
	}

	r := &Resume{Text: text}
	if !found {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			r.Sections = []Section{s.build(Other, trimmed)}
		}
	} else {
		r.Sections = make([]Section, 0, len(sections))
		for _, sec := range sections {
			r.Sections = append(r.Sections, s.build(sec.kind, strings.TrimSpace(strings.Join(sec.lines, "\n"))))
		}
	}

	r.Contact = findContact(text)
	r.ExperienceYears = estimateExperienceYears(r)
	r.EducationLevel = detectEducationLevel(r)
	return r
}

func (s *Segmenter) build(kind SectionKind, raw string) Section {
	return Section{Kind: kind, RawText: raw, Tokens: s.extractor.Extract(raw)}
}

func preambleKind(lines []string) SectionKind {
	if HasContactPattern(strings.Join(lines, "\n")) {
		return Contact
	}
	return Summary
}

// detectHeading reports whether line is a section heading. Inline headings
// ("Skills: Go, SQL") return the text after the colon as rest.
func detectHeading(line string) (kind SectionKind, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, "", false
	}

	if idx := strings.Index(trimmed, ":"); idx > 0 {
		after := strings.TrimSpace(trimmed[idx+1:])
		if after != "" {
			if kind, ok := matchHeading(trimmed[:idx]); ok {
				return kind, after, true
			}
			return 0, "", false
		}
	}

	kind, ok = matchHeading(trimmed)
	return kind, "", ok
}

// matchHeading matches a candidate heading against the pattern table. Every
// word must belong to a matched pattern or the filler list. When patterns
// of several kinds match, the longest pattern wins, then declaration order.
func matchHeading(candidate string) (SectionKind, bool) {
	words := strings.FieldsFunc(strings.ToLower(candidate), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 || len(words) > maxHeadingWords {
		return 0, false
	}

	covered := make([]bool, len(words))
	bestKind, bestLen := SectionKind(0), 0
	for _, kind := range Kinds() {
		for _, pattern := range headingPatterns[kind] {
			pw := strings.Fields(pattern)
			start := indexWords(words, pw)
			if start < 0 {
				continue
			}
			for i := start; i < start+len(pw); i++ {
				covered[i] = true
			}
			if len(pattern) > bestLen {
				bestKind, bestLen = kind, len(pattern)
			}
		}
	}
	if bestLen == 0 {
		return 0, false
	}

	for i, w := range words {
		if !covered[i] && !headingFiller[w] {
			return 0, false
		}
	}
	return bestKind, true
}

func indexWords(words, pattern []string) int {
	for i := 0; i+len(pattern) <= len(words); i++ {
		match := true
		for j, p := range pattern {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// HasContactPattern reports whether text holds an email or phone number.
func HasContactPattern(text string) bool {
	return emailPattern.MatchString(text) || len(findPhones(text)) > 0
}

func findContact(text string) ContactInfo {
	return ContactInfo{
		Emails:   unique(emailPattern.FindAllString(text, -1)),
		Phones:   findPhones(text),
		LinkedIn: unique(linkedInPattern.FindAllString(text, -1)),
	}
}

// findPhones keeps candidates with 10 to 15 digits so year ranges such as
// "2019 - 2021" are not taken for phone numbers.
func findPhones(text string) []string {
	var phones []string
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range candidate {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= 10 && digits <= 15 {
			phones = append(phones, strings.TrimSpace(candidate))
		}
	}
	return unique(phones)
}

// estimateExperienceYears spans the earliest and latest year mentioned in
// the Experience section, or in the whole text when there is none.
func estimateExperienceYears(r *Resume) int {
	text := r.Text
	if sec, ok := r.Section(Experience); ok {
		text = sec.RawText
	}
	lo, hi := 0, 0
	for _, y := range yearPattern.FindAllString(text, -1) {
		year := 0
		for _, d := range y {
			year = year*10 + int(d-'0')
		}
		if lo == 0 || year < lo {
			lo = year
		}
		if year > hi {
			hi = year
		}
	}
	return hi - lo
}

func unique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
