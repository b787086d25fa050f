package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["version", "items"],
  "properties": {
    "version": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["term", "weight"],
        "properties": {
          "term": {"type": "string", "minLength": 1},
          "weight": {"type": "number", "exclusiveMinimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

type testItem struct {
	Term   string  `mapstructure:"term"`
	Weight float64 `mapstructure:"weight"`
}

type testTable struct {
	Version string     `mapstructure:"version"`
	Items   []testItem `mapstructure:"items"`
}

func TestLoadJSONAndYAML(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{
			name: "json",
			file: "table.json",
			data: `{"version": "1", "items": [{"term": "go", "weight": 1}, {"term": "sql", "weight": 0.5}]}`,
		},
		{
			name: "yaml",
			file: "table.yaml",
			data: "version: \"1\"\nitems:\n  - term: go\n    weight: 1\n  - term: sql\n    weight: 0.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out testTable
			require.NoError(t, Load("test", tt.file, []byte(testSchema), []byte(tt.data), &out))
			assert.Equal(t, "1", out.Version)
			require.Len(t, out.Items, 2)
			assert.Equal(t, testItem{Term: "go", Weight: 1}, out.Items[0])
			assert.InDelta(t, 0.5, out.Items[1].Weight, 1e-9)
		})
	}
}

func TestLoadReportsFieldErrors(t *testing.T) {
	var out testTable
	err := Load("test", "table.json", []byte(testSchema),
		[]byte(`{"version": "1", "items": [{"term": "", "weight": 2}]}`), &out)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "test", validationErr.Table)
	assert.Len(t, validationErr.Errors, 2)
	assert.Contains(t, err.Error(), "items.0")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	var out testTable
	err := Load("test", "table.json", []byte(testSchema),
		[]byte(`{"version": "1", "items": [], "extra": true}`), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: v2\nitems: []\n"), 0o600))

	var out testTable
	require.NoError(t, LoadFile("test", path, []byte(testSchema), &out))
	assert.Equal(t, "v2", out.Version)

	err := LoadFile("test", filepath.Join(t.TempDir(), "missing.json"), []byte(testSchema), &out)
	require.Error(t, err)
}
