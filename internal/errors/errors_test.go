package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMatchesSentinelByCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "unknown company",
			err:      NewUnknownCompanyProfileError("amazon"),
			sentinel: ErrUnknownCompanyProfile,
			want:     true,
		},
		{
			name:     "wrapped unreadable document",
			err:      fmt.Errorf("upload: %w", NewUnreadableDocumentError("application/pdf", nil)),
			sentinel: ErrUnreadableDocument,
			want:     true,
		},
		{
			name:     "different code",
			err:      NewValidationError(ErrCodeEmptyInput, "blank", nil),
			sentinel: ErrUnknownCompanyProfile,
			want:     false,
		},
		{
			name:     "plain error",
			err:      stderrors.New("boom"),
			sentinel: ErrEmptyInput,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("zip: not a valid zip file")
	err := NewUnreadableDocumentError("application/docx", cause)

	assert.Equal(t, "UNREADABLE_DOCUMENT: cannot extract text from application/docx document (caused by: zip: not a valid zip file)", err.Error())
	assert.Same(t, cause, stderrors.Unwrap(err))
	assert.Equal(t, "application/docx", err.Context["mime_type"])
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeEmptyInput, CodeOf(fmt.Errorf("x: %w", ErrEmptyInput)))
	assert.Empty(t, CodeOf(stderrors.New("plain")))
}

func TestLoggerLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	logger.LogError(NewUnknownCompanyProfileError("acme"), "analysis failed", "mode", "smart")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysis failed", entry["msg"])
	assert.Equal(t, "validation", entry["error_type"])
	assert.Equal(t, ErrCodeUnknownCompanyProfile, entry["error_code"])
	assert.Equal(t, "acme", entry["company_id"])
	assert.Equal(t, "smart", entry["mode"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose")
	require.Error(t, err)

	logger, err := New("warn")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
