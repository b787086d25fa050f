package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAnalysis   ErrorType = "analysis"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code, so the
// sentinels below match any error built with their code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAnalysisError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAnalysis, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Common error codes
const (
	ErrCodeFileNotFound          = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable       = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat         = "INVALID_FORMAT"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeMissingAPIKey         = "MISSING_API_KEY"
	ErrCodeNetworkTimeout        = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig         = "INVALID_CONFIG"
	ErrCodeInvalidData           = "INVALID_DATA"
	ErrCodeInvalidMode           = "INVALID_MODE"
	ErrCodeUnknownCompanyProfile = "UNKNOWN_COMPANY_PROFILE"
	ErrCodeEmptyInput            = "EMPTY_INPUT"
	ErrCodeUnreadableDocument    = "UNREADABLE_DOCUMENT"
)

// Sentinels for errors.Is checks against the analysis error taxonomy.
var (
	ErrUnknownCompanyProfile = NewValidationError(ErrCodeUnknownCompanyProfile, "unknown company profile", nil)
	ErrEmptyInput            = NewValidationError(ErrCodeEmptyInput, "resume text is empty", nil)
	ErrUnreadableDocument    = NewIOError(ErrCodeUnreadableDocument, "document could not be read", nil)
	ErrInvalidMode           = NewValidationError(ErrCodeInvalidMode, "invalid scoring mode", nil)
)

// NewUnknownCompanyProfileError reports a company id missing from the registry.
func NewUnknownCompanyProfileError(companyID string) *AppError {
	return NewValidationError(ErrCodeUnknownCompanyProfile,
		fmt.Sprintf("company profile %q is not registered", companyID), nil).
		WithContext("company_id", companyID)
}

// NewUnreadableDocumentError reports a document the extractor cannot decode.
func NewUnreadableDocumentError(mimeType string, cause error) *AppError {
	return NewIOError(ErrCodeUnreadableDocument,
		fmt.Sprintf("cannot extract text from %s document", mimeType), cause).
		WithContext("mime_type", mimeType)
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a structured logger writing JSON to stderr, leaving
// stdout to rendered reports.
func NewLogger(level slog.Level) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a structured logger writing JSON to w.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	return &Logger{logger: slog.New(slog.NewJSONHandler(w, opts))}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		logArgs = append(logArgs, args...)
		l.logger.Error(message, logArgs...)
		return
	}

	logArgs := append([]any{"error", err.Error()}, args...)
	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewLogger(slogLevel), nil
}
