// Package schemas validates and decodes the versioned data tables (lexicon,
// company profiles) the analysis engine is driven by.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Table  string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s table failed validation:", ve.Table)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Table string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema for %s table: %v", e.Table, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Parse reads a JSON or YAML document into generic form. YAML is chosen by
// file extension; anything else is parsed as JSON.
func Parse(name string, data []byte) (any, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return doc, nil
}

// Validate checks a parsed document against a JSON Schema.
func Validate(table string, schema []byte, doc any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &SchemaLoadError{Table: table, Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Table:  table,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// Decode maps a validated document onto out, rejecting unknown keys.
func Decode(doc any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

// Load parses, validates and decodes a table in one step.
func Load(table, name string, schema, data []byte, out any) error {
	doc, err := Parse(name, data)
	if err != nil {
		return err
	}
	if err := Validate(table, schema, doc); err != nil {
		return err
	}
	if err := Decode(doc, out); err != nil {
		return fmt.Errorf("failed to decode %s table: %w", table, err)
	}
	return nil
}

// LoadFile is Load for a table stored on disk.
func LoadFile(table, path string, schema []byte, out any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied table path
	if err != nil {
		return fmt.Errorf("failed to read %s table %s: %w", table, path, err)
	}
	return Load(table, path, schema, data, out)
}
