package resume

import (
	"regexp"
	"strings"
)

// Education levels, highest first.
const (
	LevelPhD       = "phd"
	LevelMasters   = "masters"
	LevelMBA       = "mba"
	LevelBachelors = "bachelors"
	LevelDiploma   = "diploma"
)

var educationLevels = []struct {
	level   string
	pattern *regexp.Regexp
}{
	{LevelPhD, regexp.MustCompile(`\bph\.?\s?d\b|\bdoctorate\b|\bdoctoral\b`)},
	{LevelMasters, regexp.MustCompile(`\bmaster'?s?\b|\bm\.?sc\b|\bm\.?tech\b|\bm\.?eng\b|\bm\.s\.`)},
	{LevelMBA, regexp.MustCompile(`\bmba\b`)},
	{LevelBachelors, regexp.MustCompile(`\bbachelor'?s?\b|\bb\.?sc\b|\bb\.?tech\b|\bb\.?eng\b|\bb\.s\.|\bb\.e\.|\bb\.a\.`)},
	{LevelDiploma, regexp.MustCompile(`\bdiploma\b`)},
}

// detectEducationLevel returns the highest degree named in the Education
// section, falling back to the whole text.
func detectEducationLevel(r *Resume) string {
	text := r.Text
	if sec, ok := r.Section(Education); ok && sec.RawText != "" {
		text = sec.RawText
	}
	text = strings.ToLower(text)
	for _, e := range educationLevels {
		if e.pattern.MatchString(text) {
			return e.level
		}
	}
	return ""
}
