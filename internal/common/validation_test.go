package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/errors"
)

func TestNormalizeOutputFormat(t *testing.T) {
	all := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		want      string
		errorMsg  string
	}{
		{name: "json", format: "json", supported: all, want: "json"},
		{name: "upper case", format: "TEXT", supported: all, want: "text"},
		{name: "surrounding space", format: " markdown ", supported: all, want: "markdown"},
		{name: "md alias", format: "md", supported: all, want: "markdown"},
		{name: "txt alias", format: "txt", supported: all, want: "text"},
		{name: "no restriction", format: "text", want: "text"},
		{name: "restricted", format: "text", supported: []string{"json"}, errorMsg: "Supported formats: [json]"},
		{name: "unknown", format: "xml", supported: all, errorMsg: "unsupported output format 'xml'"},
		{name: "configured without formatter", format: "yaml", supported: []string{"json", "yaml"}, errorMsg: "Supported formats: [json]"},
		{name: "empty", format: "", supported: all, errorMsg: "unsupported output format ''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOutputFormat(tt.format, tt.supported)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, GetSupportedFormats(nil))
	assert.Equal(t, []string{"text", "json"}, GetSupportedFormats([]string{"text", "pdf", "json"}))
	assert.Empty(t, GetSupportedFormats([]string{"pdf"}))
}
