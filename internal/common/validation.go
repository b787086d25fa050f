package common

import (
	"fmt"
	"slices"
	"strings"

	"resuin/internal/errors"
	"resuin/internal/formatters"
)

// formatAliases maps shorthand format names to their canonical form.
var formatAliases = map[string]string{
	"md":  "markdown",
	"txt": "text",
}

// NormalizeOutputFormat canonicalizes format (case, surrounding space and
// aliases such as "md") and checks it against the configured formats. An
// empty supported list allows every format the formatter registry knows.
func NormalizeOutputFormat(format string, supportedFormats []string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if canonical, ok := formatAliases[normalized]; ok {
		normalized = canonical
	}

	allowed := GetSupportedFormats(supportedFormats)
	if slices.Contains(allowed, normalized) {
		return normalized, nil
	}

	return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, allowed), nil)
}

// GetSupportedFormats returns the configured formats that have a formatter,
// or every registered format when none are configured.
func GetSupportedFormats(supportedFormats []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(supportedFormats) == 0 {
		slices.Sort(registered)
		return registered
	}

	formats := make([]string, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		if slices.Contains(registered, f) {
			formats = append(formats, f)
		}
	}
	return formats
}
