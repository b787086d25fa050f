// Package analyzer is the entry point of resume analysis. It wires the
// segmenter, extractor, scoring engine, suggestion rules and report
// assembler together.
package analyzer

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	resuinErrors "resuin/internal/errors"
	"resuin/internal/keywords"
	"resuin/internal/profiles"
	"resuin/internal/report"
	"resuin/internal/resume"
	"resuin/internal/scoring"
	"resuin/internal/suggestions"
	"resuin/internal/types"
)

// DefaultConcurrency bounds Compare fan-out when no limit is configured.
const DefaultConcurrency = 4

// Analyzer scores resumes against company profiles. It holds only
// read-only state and is safe for concurrent use.
type Analyzer struct {
	registry    *profiles.Registry
	segmenter   *resume.Segmenter
	engine      *scoring.Engine
	concurrency int
	logger      *resuinErrors.Logger
	observer    Observer
}

// Observer is notified of every completed analysis.
type Observer interface {
	ObserveAnalysis(ctx context.Context, report types.AnalysisReport)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRegistry replaces the embedded profile registry.
func WithRegistry(reg *profiles.Registry) Option {
	return func(a *Analyzer) { a.registry = reg }
}

// WithScoringConfig sets the scoring thresholds.
func WithScoringConfig(cfg scoring.Config) Option {
	return func(a *Analyzer) { a.engine = scoring.NewEngine(cfg) }
}

// WithConcurrency bounds the number of companies Compare scores at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the logger used for Compare diagnostics.
func WithLogger(logger *resuinErrors.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithObserver registers an observer for completed analyses.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// New returns an analyzer. Without options it uses the embedded profile
// registry and default scoring thresholds.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		engine:      scoring.NewEngine(scoring.DefaultConfig()),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = profiles.Default()
	}
	a.segmenter = resume.NewSegmenter(a.registry.Extractor())
	return a
}

// Registry returns the profile registry the analyzer scores against.
func (a *Analyzer) Registry() *profiles.Registry {
	return a.registry
}

// Analyze scores resumeText against one company. An empty mode selects the
// company's default mode.
func (a *Analyzer) Analyze(resumeText, companyID, jobDescription string, mode types.Mode) (types.AnalysisReport, error) {
	return a.AnalyzeContext(context.Background(), resumeText, companyID, jobDescription, mode)
}

// AnalyzeContext is Analyze with a context passed on to the observer.
func (a *Analyzer) AnalyzeContext(ctx context.Context, resumeText, companyID, jobDescription string, mode types.Mode) (types.AnalysisReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return types.AnalysisReport{}, resuinErrors.ErrEmptyInput
	}
	mode, err := parseMode(mode)
	if err != nil {
		return types.AnalysisReport{}, err
	}
	profile, err := a.registry.Get(companyID)
	if err != nil {
		return types.AnalysisReport{}, err
	}

	r := a.segmenter.Segment(resumeText)
	jd := a.registry.Extractor().Extract(jobDescription)
	return a.analyze(ctx, r, profile, jd, mode)
}

func (a *Analyzer) analyze(ctx context.Context, r *resume.Resume, p *profiles.Profile, jd *keywords.Set, mode types.Mode) (types.AnalysisReport, error) {
	if mode == "" {
		mode = p.DefaultMode
	}
	res, err := a.engine.Score(r, p, jd, mode)
	if err != nil {
		return types.AnalysisReport{}, resuinErrors.NewAnalysisError(resuinErrors.ErrCodeInvalidMode, "scoring failed", err).
			WithContext("company_id", p.ID)
	}
	rep := report.Assemble(r, res, suggestions.Suggest(res))
	if a.observer != nil {
		a.observer.ObserveAnalysis(ctx, rep)
	}
	return rep, nil
}

// Compare scores resumeText against every registered company and ranks
// the results by overall score, ties in registry order.
func (a *Analyzer) Compare(ctx context.Context, resumeText, jobDescription string, mode types.Mode) (types.Comparison, error) {
	if strings.TrimSpace(resumeText) == "" {
		return types.Comparison{}, resuinErrors.ErrEmptyInput
	}
	mode, err := parseMode(mode)
	if err != nil {
		return types.Comparison{}, err
	}

	// The resume and job description are parsed once and shared read-only.
	r := a.segmenter.Segment(resumeText)
	jd := a.registry.Extractor().Extract(jobDescription)
	all := a.registry.Profiles()
	entries := make([]types.ComparisonEntry, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := a.analyze(gctx, r, p, jd, mode)
			if err != nil {
				return err
			}
			entries[i] = report.Entry(rep)
			if a.logger != nil {
				a.logger.Debug("Compared company", "company_id", p.ID, "overall_score", rep.OverallScore)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.Comparison{}, err
	}

	slices.SortStableFunc(entries, func(x, y types.ComparisonEntry) int {
		return cmp.Compare(y.OverallScore, x.OverallScore)
	})
	return types.Comparison{Entries: entries}, nil
}

// Companies lists the registered company profiles.
func (a *Analyzer) Companies() types.CompanyList {
	return a.registry.Summaries()
}

func parseMode(mode types.Mode) (types.Mode, error) {
	parsed, err := types.ParseMode(string(mode))
	if err != nil {
		return "", resuinErrors.NewValidationError(resuinErrors.ErrCodeInvalidMode, err.Error(), resuinErrors.ErrInvalidMode).
			WithContext("mode", string(mode))
	}
	return parsed, nil
}
