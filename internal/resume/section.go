// Package resume splits extracted resume text into typed sections.
package resume

import (
	"fmt"
	"strings"

	"resuin/internal/keywords"
)

// SectionKind labels a resume section.
type SectionKind int

// Declaration order is the tie-break order for equally specific headings.
const (
	Contact SectionKind = iota
	Summary
	Skills
	Experience
	Education
	Projects
	Other
)

var kindNames = [...]string{
	Contact:    "Contact",
	Summary:    "Summary",
	Skills:     "Skills",
	Experience: "Experience",
	Education:  "Education",
	Projects:   "Projects",
	Other:      "Other",
}

// Kinds lists every section kind in declaration order.
func Kinds() []SectionKind {
	return []SectionKind{Contact, Summary, Skills, Experience, Education, Projects, Other}
}

func (k SectionKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("SectionKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseSectionKind resolves a section name case-insensitively.
func ParseSectionKind(name string) (SectionKind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(k.String(), strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown section kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k SectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SectionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseSectionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Section is one labeled block of resume text.
type Section struct {
	Kind    SectionKind
	RawText string
	Tokens  *keywords.Set
}

// WordCount returns the number of whitespace-separated words.
func (s Section) WordCount() int {
	return len(strings.Fields(s.RawText))
}

// ContactInfo holds contact details found anywhere in the resume.
type ContactInfo struct {
	Emails   []string `json:"emails,omitempty"`
	Phones   []string `json:"phones,omitempty"`
	LinkedIn []string `json:"linkedin,omitempty"`
}

// HasEmail reports whether at least one email address was found.
func (c ContactInfo) HasEmail() bool {
	return len(c.Emails) > 0
}

// Resume is the segmented form of a resume. It is not modified after
// Segment returns.
type Resume struct {
	Text            string
	Sections        []Section
	Contact         ContactInfo
	ExperienceYears int
	EducationLevel  string
}

// Section returns the section of the given kind.
func (r *Resume) Section(kind SectionKind) (Section, bool) {
	for _, s := range r.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Has reports whether a section of the given kind exists.
func (r *Resume) Has(kind SectionKind) bool {
	_, ok := r.Section(kind)
	return ok
}

// Kinds returns the section kinds in resume order.
func (r *Resume) Kinds() []SectionKind {
	kinds := make([]SectionKind, len(r.Sections))
	for i, s := range r.Sections {
		kinds[i] = s.Kind
	}
	return kinds
}

// Keywords returns the union of all section token sets.
func (r *Resume) Keywords() *keywords.Set {
	sets := make([]*keywords.Set, len(r.Sections))
	for i, s := range r.Sections {
		sets[i] = s.Tokens
	}
	return keywords.Union(sets...)
}
