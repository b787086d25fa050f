package scoring

import "fmt"

// Config holds the tunable thresholds of the scoring engine.
type Config struct {
	// MaxEditDistance is the largest edit distance Smart mode accepts.
	MaxEditDistance int
	// MinFuzzyLength is the shortest term eligible for edit-distance matching.
	MinFuzzyLength int
	// MinSectionKeywords is the keyword count below which a present section
	// counts as thin.
	MinSectionKeywords int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxEditDistance:    2,
		MinFuzzyLength:     5,
		MinSectionKeywords: 5,
	}
}

// Validate rejects thresholds that cannot be applied.
func (c Config) Validate() error {
	if c.MaxEditDistance < 0 {
		return fmt.Errorf("max edit distance must be non-negative, got %d", c.MaxEditDistance)
	}
	if c.MinFuzzyLength < 1 {
		return fmt.Errorf("min fuzzy length must be positive, got %d", c.MinFuzzyLength)
	}
	if c.MinSectionKeywords < 1 {
		return fmt.Errorf("min section keywords must be positive, got %d", c.MinSectionKeywords)
	}
	return nil
}
