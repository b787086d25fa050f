// Package profiles holds the read-only catalog of company ATS profiles.
package profiles

import (
	_ "embed"
	"fmt"
	"sync"

	resuinErrors "resuin/internal/errors"
	"resuin/internal/keywords"
	"resuin/internal/resume"
	"resuin/internal/schemas"
	"resuin/internal/types"
)

//go:embed profiles.json
var defaultCatalogData []byte

//go:embed profiles.schema.json
var catalogSchema []byte

// Difficulty grades how strict a company's screening is.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Catalog is the decoded form of a profile table.
type Catalog struct {
	Version  string `mapstructure:"version"`
	Profiles []Spec `mapstructure:"profiles"`
}

// Spec is one profile as written in the table, before normalization.
type Spec struct {
	ID                     string                 `mapstructure:"id"`
	Name                   string                 `mapstructure:"name"`
	ATSType                string                 `mapstructure:"atsType"`
	Difficulty             string                 `mapstructure:"difficulty"`
	DefaultMode            string                 `mapstructure:"defaultMode"`
	RequiredSections       []string               `mapstructure:"requiredSections"`
	KeywordWeights         []WeightSpec           `mapstructure:"keywordWeights"`
	CultureTerms           []string               `mapstructure:"cultureTerms"`
	Notes                  []string               `mapstructure:"notes"`
	ExperienceRequirements ExperienceRequirements `mapstructure:"experienceRequirements"`
	EducationPreferences   []string               `mapstructure:"educationPreferences"`
}

// WeightSpec is a keyword weight table entry.
type WeightSpec struct {
	Term   string  `mapstructure:"term"`
	Weight float64 `mapstructure:"weight"`
}

// ExperienceRequirements are the minimum years per seniority band.
type ExperienceRequirements struct {
	Entry  int `mapstructure:"entry"`
	Mid    int `mapstructure:"mid"`
	Senior int `mapstructure:"senior"`
}

// WeightedKeyword is a normalized keyword with its profile weight.
type WeightedKeyword struct {
	Keyword keywords.Keyword
	Weight  float64
}

// Profile is a normalized, read-only company ATS profile.
type Profile struct {
	ID                     string
	Name                   string
	ATSType                string
	Difficulty             Difficulty
	DefaultMode            types.Mode
	RequiredSections       []resume.SectionKind
	KeywordWeights         []WeightedKeyword
	CultureTerms           []keywords.Keyword
	Notes                  []string
	ExperienceRequirements ExperienceRequirements
	EducationPreferences   []string

	weights map[string]float64
}

// Weight returns the table weight of a normalized term.
func (p *Profile) Weight(term string) (float64, bool) {
	w, ok := p.weights[term]
	return w, ok
}

// Requires reports whether kind is a required section.
func (p *Profile) Requires(kind resume.SectionKind) bool {
	for _, k := range p.RequiredSections {
		if k == kind {
			return true
		}
	}
	return false
}

// Registry is an immutable set of profiles plus the extractor that shares
// their vocabulary. It is safe for concurrent use.
type Registry struct {
	version   string
	profiles  []*Profile
	byID      map[string]*Profile
	extractor *keywords.Extractor
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry built from the embedded catalog and lexicon.
// It is constructed once; later calls return the same instance.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		catalog, err := DefaultCatalog()
		if err != nil {
			panic(fmt.Sprintf("embedded profile catalog: %v", err))
		}
		reg, err := NewRegistry(catalog, keywords.DefaultLexicon())
		if err != nil {
			panic(fmt.Sprintf("embedded profile catalog: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// DefaultCatalog decodes the embedded profile table.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog("profiles.json", defaultCatalogData)
}

// ParseCatalog validates and decodes a profile table in JSON or YAML form.
func ParseCatalog(name string, data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := schemas.Load("profiles", name, catalogSchema, data, &catalog); err != nil {
		return nil, resuinErrors.NewConfigError(resuinErrors.ErrCodeInvalidData, "invalid profile catalog", err).
			WithContext("source", name)
	}
	return &catalog, nil
}

// LoadFile builds a registry from a profile table on disk.
func LoadFile(path string, lex *keywords.Lexicon) (*Registry, error) {
	var catalog Catalog
	if err := schemas.LoadFile("profiles", path, catalogSchema, &catalog); err != nil {
		return nil, resuinErrors.NewConfigError(resuinErrors.ErrCodeInvalidData, "invalid profile catalog", err).
			WithContext("source", path)
	}
	return NewRegistry(&catalog, lex)
}

// NewRegistry normalizes a catalog against a lexicon. Every multi-word
// profile term joins the extractor's phrase dictionary so resumes and job
// descriptions tokenize it the same way.
func NewRegistry(catalog *Catalog, lex *keywords.Lexicon) (*Registry, error) {
	var phrases []string
	for _, spec := range catalog.Profiles {
		for _, w := range spec.KeywordWeights {
			phrases = append(phrases, w.Term)
		}
		phrases = append(phrases, spec.CultureTerms...)
	}
	extractor := keywords.NewExtractor(lex, phrases...)

	reg := &Registry{
		version:   catalog.Version,
		profiles:  make([]*Profile, 0, len(catalog.Profiles)),
		byID:      make(map[string]*Profile, len(catalog.Profiles)),
		extractor: extractor,
	}
	for _, spec := range catalog.Profiles {
		if _, dup := reg.byID[spec.ID]; dup {
			return nil, invalidProfile(spec.ID, "duplicate profile id", nil)
		}
		p, err := buildProfile(spec, extractor)
		if err != nil {
			return nil, err
		}
		reg.profiles = append(reg.profiles, p)
		reg.byID[p.ID] = p
	}
	return reg, nil
}

func buildProfile(spec Spec, extractor *keywords.Extractor) (*Profile, error) {
	p := &Profile{
		ID:                     spec.ID,
		Name:                   spec.Name,
		ATSType:                spec.ATSType,
		Difficulty:             Difficulty(spec.Difficulty),
		Notes:                  append([]string(nil), spec.Notes...),
		ExperienceRequirements: spec.ExperienceRequirements,
		EducationPreferences:   append([]string(nil), spec.EducationPreferences...),
		weights:                make(map[string]float64, len(spec.KeywordWeights)),
	}

	switch p.Difficulty {
	case Easy, Medium, Hard:
	default:
		return nil, invalidProfile(spec.ID, fmt.Sprintf("invalid difficulty %q", spec.Difficulty), nil)
	}

	mode, err := types.ParseMode(spec.DefaultMode)
	if err != nil {
		return nil, invalidProfile(spec.ID, "invalid default mode", err)
	}
	if mode == "" {
		mode = types.ModeSmart
	}
	p.DefaultMode = mode

	for _, name := range spec.RequiredSections {
		kind, err := resume.ParseSectionKind(name)
		if err != nil {
			return nil, invalidProfile(spec.ID, "invalid required section", err)
		}
		p.RequiredSections = append(p.RequiredSections, kind)
	}

	// A later entry folding onto an earlier term after stemming is dropped;
	// the first weight keeps its table position.
	for _, w := range spec.KeywordWeights {
		if w.Weight <= 0 || w.Weight > 1 {
			return nil, invalidProfile(spec.ID, fmt.Sprintf("weight %v for %q outside (0,1]", w.Weight, w.Term), nil)
		}
		kw, ok := extractor.Normalize(w.Term)
		if !ok {
			return nil, invalidProfile(spec.ID, fmt.Sprintf("keyword %q normalizes to nothing", w.Term), nil)
		}
		if _, dup := p.weights[kw.Term]; dup {
			continue
		}
		p.weights[kw.Term] = w.Weight
		p.KeywordWeights = append(p.KeywordWeights, WeightedKeyword{Keyword: kw, Weight: w.Weight})
	}

	seen := make(map[string]bool, len(spec.CultureTerms))
	for _, term := range spec.CultureTerms {
		kw, ok := extractor.Normalize(term)
		if !ok {
			return nil, invalidProfile(spec.ID, fmt.Sprintf("culture term %q normalizes to nothing", term), nil)
		}
		if seen[kw.Term] {
			continue
		}
		seen[kw.Term] = true
		p.CultureTerms = append(p.CultureTerms, kw)
	}

	return p, nil
}

func invalidProfile(id, message string, cause error) *resuinErrors.AppError {
	return resuinErrors.NewConfigError(resuinErrors.ErrCodeInvalidData, message, cause).
		WithContext("profile_id", id)
}

// Get looks up a profile by id. Unknown ids fail with UnknownCompanyProfile.
func (r *Registry) Get(id string) (*Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, resuinErrors.NewUnknownCompanyProfileError(id)
	}
	return p, nil
}

// Profiles returns the profiles in catalog order.
func (r *Registry) Profiles() []*Profile {
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// IDs returns the profile ids in catalog order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		ids[i] = p.ID
	}
	return ids
}

// Extractor returns the keyword extractor built with the catalog's phrases.
func (r *Registry) Extractor() *keywords.Extractor {
	return r.extractor
}

// Version returns the catalog version.
func (r *Registry) Version() string {
	return r.version
}

// Summaries describes every profile for listings.
func (r *Registry) Summaries() types.CompanyList {
	list := types.CompanyList{Version: r.version, Companies: make([]types.CompanySummary, 0, len(r.profiles))}
	for _, p := range r.profiles {
		sections := make([]string, len(p.RequiredSections))
		for i, k := range p.RequiredSections {
			sections[i] = k.String()
		}
		list.Companies = append(list.Companies, types.CompanySummary{
			ID:               p.ID,
			Name:             p.Name,
			ATSType:          p.ATSType,
			Difficulty:       string(p.Difficulty),
			DefaultMode:      p.DefaultMode,
			RequiredSections: sections,
			Keywords:         len(p.KeywordWeights),
		})
	}
	return list
}
