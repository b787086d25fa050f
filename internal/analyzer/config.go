package analyzer

import (
	"resuin/internal/config"
	resuinErrors "resuin/internal/errors"
	"resuin/internal/keywords"
	"resuin/internal/profiles"
)

// FromConfig builds an analyzer from application configuration. Lexicon
// and profile files, when set, replace the embedded tables.
func FromConfig(cfg *config.Config, logger *resuinErrors.Logger, opts ...Option) (*Analyzer, error) {
	reg, err := loadRegistry(cfg.Analysis, logger)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithRegistry(reg),
		WithScoringConfig(cfg.Analysis.Scoring()),
		WithConcurrency(cfg.Analysis.CompareConcurrency),
		WithLogger(logger),
	}
	return New(append(base, opts...)...), nil
}

func loadRegistry(cfg config.AnalysisConfig, logger *resuinErrors.Logger) (*profiles.Registry, error) {
	if cfg.LexiconFile == "" && cfg.ProfilesFile == "" {
		return profiles.Default(), nil
	}

	lex := keywords.DefaultLexicon()
	if cfg.LexiconFile != "" {
		loaded, err := keywords.LoadLexiconFile(cfg.LexiconFile)
		if err != nil {
			return nil, resuinErrors.NewConfigError(resuinErrors.ErrCodeInvalidData, "failed to load lexicon", err).
				WithContext("path", cfg.LexiconFile)
		}
		lex = loaded
		if logger != nil {
			logger.Info("Loaded lexicon override", "path", cfg.LexiconFile, "version", lex.Version)
		}
	}

	var (
		reg *profiles.Registry
		err error
	)
	if cfg.ProfilesFile != "" {
		reg, err = profiles.LoadFile(cfg.ProfilesFile, lex)
	} else {
		var catalog *profiles.Catalog
		if catalog, err = profiles.DefaultCatalog(); err == nil {
			reg, err = profiles.NewRegistry(catalog, lex)
		}
	}
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Loaded company profiles", "count", len(reg.Profiles()), "version", reg.Version())
	}
	return reg, nil
}
