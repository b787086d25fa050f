package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/keywords"
)

const sampleResume = `Jane Doe
jane.doe@example.com | +1 (555) 123-4567 | https://www.linkedin.com/in/janedoe

PROFESSIONAL SUMMARY
Backend engineer building distributed systems in Go and Python.

Technical Skills
Go, Python, Kubernetes, AWS, PostgreSQL, machine learning

Work Experience
Acme Corp, Senior Engineer, 2019 - 2024
- Led migration to microservices on Kubernetes
Initech, Engineer, 2016 - 2019

Education
B.Sc. Computer Science, State University, 2012 - 2016
`

func newTestSegmenter() *Segmenter {
	return NewSegmenter(keywords.NewExtractor(keywords.DefaultLexicon()))
}

func TestSegmentStandardResume(t *testing.T) {
	r := newTestSegmenter().Segment(sampleResume)

	assert.Equal(t, []SectionKind{Contact, Summary, Skills, Experience, Education}, r.Kinds())

	contact, ok := r.Section(Contact)
	require.True(t, ok)
	assert.Contains(t, contact.RawText, "jane.doe@example.com")

	skills, ok := r.Section(Skills)
	require.True(t, ok)
	aws, ok := keywords.NewExtractor(keywords.DefaultLexicon()).Normalize("AWS")
	require.True(t, ok)
	assert.True(t, skills.Tokens.Has(aws.Term))
	assert.GreaterOrEqual(t, skills.Tokens.Len(), 5)

	exp, _ := r.Section(Experience)
	assert.Contains(t, exp.RawText, "Initech")
	assert.NotContains(t, exp.RawText, "State University")

	assert.Equal(t, []string{"jane.doe@example.com"}, r.Contact.Emails)
	assert.Equal(t, []string{"+1 (555) 123-4567"}, r.Contact.Phones)
	assert.Equal(t, []string{"https://www.linkedin.com/in/janedoe"}, r.Contact.LinkedIn)
	assert.Equal(t, 8, r.ExperienceYears)
	assert.Equal(t, LevelBachelors, r.EducationLevel)
}

func TestSegmentPreamble(t *testing.T) {
	tests := []struct {
		name string
		text string
		want SectionKind
	}{
		{
			name: "email makes contact",
			text: "Jane Doe\njane@example.com\nSkills\nGo",
			want: Contact,
		},
		{
			name: "phone makes contact",
			text: "Jane Doe\n555-123-4567\nSkills\nGo",
			want: Contact,
		},
		{
			name: "prose makes summary",
			text: "Engineer who loves reliable systems\nSkills\nGo",
			want: Summary,
		},
		{
			name: "year range is not a phone",
			text: "Engineer since 2019 - 2021\nSkills\nGo",
			want: Summary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestSegmenter().Segment(tt.text)
			require.Len(t, r.Sections, 2)
			assert.Equal(t, tt.want, r.Sections[0].Kind)
			assert.Equal(t, Skills, r.Sections[1].Kind)
		})
	}
}

func TestSegmentWithoutHeadingsIsOther(t *testing.T) {
	r := newTestSegmenter().Segment("  just some text about Go and Kubernetes\nand more text  ")

	require.Len(t, r.Sections, 1)
	assert.Equal(t, Other, r.Sections[0].Kind)
	assert.Equal(t, "just some text about Go and Kubernetes\nand more text", r.Sections[0].RawText)
}

func TestSegmentBlankText(t *testing.T) {
	r := newTestSegmenter().Segment(" \n\t\n")
	assert.Empty(t, r.Sections)
	assert.Equal(t, 0, r.Keywords().Len())
}

func TestSegmentInlineHeading(t *testing.T) {
	r := newTestSegmenter().Segment("Contact: a@b.com")

	require.Len(t, r.Sections, 1)
	assert.Equal(t, Contact, r.Sections[0].Kind)
	assert.Equal(t, "a@b.com", r.Sections[0].RawText)
	assert.True(t, r.Contact.HasEmail())
}

func TestSegmentInlineLabelsInsideSection(t *testing.T) {
	text := `Jane Doe
jane@example.com

Experience
Software Engineer, Acme, 2019 - 2023
Technologies: Go, Kubernetes
- Built distributed systems serving millions of requests
- Led design reviews for the platform team

Skills
Languages: Java, Python, SQL
Frameworks: Spring, Django`

	r := newTestSegmenter().Segment(text)
	assert.Equal(t, []SectionKind{Contact, Experience, Skills, Other}, r.Kinds())

	exp, ok := r.Section(Experience)
	require.True(t, ok)
	assert.Equal(t, "Software Engineer, Acme, 2019 - 2023\n"+
		"- Built distributed systems serving millions of requests\n"+
		"- Led design reviews for the platform team", exp.RawText)

	skills, ok := r.Section(Skills)
	require.True(t, ok)
	assert.Equal(t, "Go, Kubernetes\nFrameworks: Spring, Django", skills.RawText)

	other, ok := r.Section(Other)
	require.True(t, ok)
	assert.Equal(t, "Java, Python, SQL", other.RawText)
}

func TestSegmentLeadingInlineHeadingOpensSection(t *testing.T) {
	r := newTestSegmenter().Segment("Skills: Go, SQL\nKubernetes\nExperience\nAcme 2020 - 2022")

	assert.Equal(t, []SectionKind{Skills, Experience}, r.Kinds())
	skills, _ := r.Section(Skills)
	assert.Equal(t, "Go, SQL\nKubernetes", skills.RawText)
}

func TestSegmentMergesRepeatedKinds(t *testing.T) {
	text := "Experience\nAcme 2020-2022\nEducation\nMSc Physics\nEmployment History\nGlobex 2022-2024"
	r := newTestSegmenter().Segment(text)

	assert.Equal(t, []SectionKind{Experience, Education}, r.Kinds())
	exp, _ := r.Section(Experience)
	assert.Equal(t, "Acme 2020-2022\nGlobex 2022-2024", exp.RawText)
	assert.Equal(t, 4, r.ExperienceYears)
	assert.Equal(t, LevelMasters, r.EducationLevel)
}

func TestSegmentKeepsResumeOrder(t *testing.T) {
	r := newTestSegmenter().Segment("Education\nBSc\nExperience\nAcme\nContact\nme@example.com")
	assert.Equal(t, []SectionKind{Education, Experience, Contact}, r.Kinds())
}

func TestDetectHeading(t *testing.T) {
	tests := []struct {
		line     string
		wantKind SectionKind
		wantRest string
		wantOK   bool
	}{
		{line: "EXPERIENCE", wantKind: Experience, wantOK: true},
		{line: "## Work History:", wantKind: Experience, wantOK: true},
		{line: "Technical Skills & Tools", wantKind: Skills, wantOK: true},
		{line: "Skills: Go, SQL", wantKind: Skills, wantRest: "Go, SQL", wantOK: true},
		{line: "Education and Certifications", wantKind: Other, wantOK: true},
		{line: "Personal Projects", wantKind: Projects, wantOK: true},
		{line: "About Me", wantKind: Summary, wantOK: true},
		{line: "5 years of experience in Go", wantOK: false},
		{line: "Led projects across three teams", wantOK: false},
		{line: "Email: jane@example.com", wantOK: false},
		{line: "https://example.com/projects", wantOK: false},
		{line: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, rest, ok := detectHeading(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind)
				assert.Equal(t, tt.wantRest, rest)
			}
		})
	}
}

func TestEducationLevel(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Education\nPh.D. in Computer Science\nB.Tech", want: LevelPhD},
		{text: "Education\nMaster's in Data Science", want: LevelMasters},
		{text: "Education\nMBA, Finance", want: LevelMBA},
		{text: "Education\nBachelor of Engineering", want: LevelBachelors},
		{text: "Education\nDiploma in Networking", want: LevelDiploma},
		{text: "Education\nSelf taught", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, newTestSegmenter().Segment(tt.text).EducationLevel)
		})
	}
}

func TestSectionKindText(t *testing.T) {
	k, err := ParseSectionKind(" experience ")
	require.NoError(t, err)
	assert.Equal(t, Experience, k)

	_, err = ParseSectionKind("hobbies")
	assert.Error(t, err)

	text, err := Projects.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Projects", string(text))
	assert.Equal(t, "SectionKind(42)", SectionKind(42).String())
}
