package server

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"resuin/internal/analyzer"
	"resuin/internal/config"
	resuinErrors "resuin/internal/errors"
	"resuin/internal/observability"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// SecretReader overrides the Vault client used to poll TLS secrets
	SecretReader SecretReader

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Analyzer      *analyzer.Analyzer
	Observability *observability.ObservabilityManager

	// Logger
	Logger *resuinErrors.Logger

	validate *validator.Validate
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ConfigFrom builds a ServerConfig from the server section of appCfg.
func ConfigFrom(appCfg *config.Config, version string) ServerConfig {
	sc := appCfg.Server
	rl := sc.RateLimit
	return ServerConfig{
		Host:           sc.Host,
		Port:           sc.Port,
		Version:        version,
		TLSConfig:      sc.TLS,
		APIKeys:        sc.APIKeys,
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		IdleTimeout:    sc.IdleTimeout,
		MaxRequestSize: sc.MaxRequestSize,
		RateLimit:      &rl,
	}
}

// NewServer creates a new Server instance. Nil dependencies are replaced by
// a discarding logger, a disabled observability manager and an analyzer
// over the embedded profiles.
func NewServer(appCfg *config.Config, cfg ServerConfig, az *analyzer.Analyzer, om *observability.ObservabilityManager, logger *resuinErrors.Logger) *Server {
	if logger == nil {
		logger = resuinErrors.NewLoggerTo(io.Discard, slog.LevelError)
	}

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false})
	}
	if az == nil {
		az = analyzer.New(analyzer.WithLogger(logger), analyzer.WithObserver(om))
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Analyzer:       az,
		Observability:  om,
		Logger:         logger,
		validate:       newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
