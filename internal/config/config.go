package config

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/spf13/viper"

	"resuin/internal/scoring"
	"resuin/internal/types"
)

// Config holds all application configuration
// Precedence Order:
// 1. Vault (if configured) - API keys and TLS material only
// 2. Environment Variables (RESUIN_ANALYSIS_DEFAULTMODE, etc.)
// 3. Config File values
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// AnalysisConfig holds scoring engine configuration
type AnalysisConfig struct {
	DefaultCompany     string `mapstructure:"defaultCompany"`
	DefaultMode        string `mapstructure:"defaultMode"`     // Empty uses each company's default
	MaxEditDistance    int    `mapstructure:"maxEditDistance"` // Smart mode fuzzy threshold
	MinFuzzyLength     int    `mapstructure:"minFuzzyLength"`
	MinSectionKeywords int    `mapstructure:"minSectionKeywords"`
	ProfilesFile       string `mapstructure:"profilesFile"` // Replaces the embedded company profiles
	LexiconFile        string `mapstructure:"lexiconFile"`  // Replaces the embedded lexicon
	CompareConcurrency int    `mapstructure:"compareConcurrency"`
}

// Scoring returns the scoring thresholds.
func (a AnalysisConfig) Scoring() scoring.Config {
	return scoring.Config{
		MaxEditDistance:    a.MaxEditDistance,
		MinFuzzyLength:     a.MinFuzzyLength,
		MinSectionKeywords: a.MinSectionKeywords,
	}
}

// Mode returns the configured default mode.
func (a AnalysisConfig) Mode() types.Mode {
	mode, _ := types.ParseMode(a.DefaultMode)
	return mode
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // "disabled" or "server"
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)

	// Certificate content (used when loaded from Vault instead of files)
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`

	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls certificate file watching and, for
// certificates loaded from Vault, secret polling
type AutoReloadConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	DebounceDelay     time.Duration `mapstructure:"debounceDelay"`
	VaultPollInterval time.Duration `mapstructure:"vaultPollInterval"` // Zero disables Vault polling
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console exporter configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from the default search paths and the
// environment.
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load loads configuration from configFile, or from the default search
// paths when it is empty, then applies environment overrides.
func Load(configFile string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := newViper()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resuin/")
		v.AddConfigPath("$HOME/.resuin")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resuin/, $HOME/.resuin, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("default configuration: %v", err))
	}
	config.applyFallbacks()
	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app maxFileSize must be positive")
	}

	if err := c.ValidateAnalysisConfig(); err != nil {
		return fmt.Errorf("analysis configuration error: %w", err)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// ValidateAnalysisConfig validates the scoring configuration
func (c *Config) ValidateAnalysisConfig() error {
	if _, err := types.ParseMode(c.Analysis.DefaultMode); err != nil {
		return err
	}
	if c.Analysis.CompareConcurrency < 1 {
		return fmt.Errorf("compareConcurrency must be positive, got %d", c.Analysis.CompareConcurrency)
	}
	return c.Analysis.Scoring().Validate()
}
