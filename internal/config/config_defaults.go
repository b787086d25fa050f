package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RESUIN"

// newViper returns a viper instance with defaults and environment handling
// applied.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Analysis Configuration
	v.SetDefault("analysis.defaultCompany", "generic")
	v.SetDefault("analysis.defaultMode", "")
	v.SetDefault("analysis.maxEditDistance", 2)
	v.SetDefault("analysis.minFuzzyLength", 5)
	v.SetDefault("analysis.minSectionKeywords", 5)
	v.SetDefault("analysis.profilesFile", "")
	v.SetDefault("analysis.lexiconFile", "")
	v.SetDefault("analysis.compareConcurrency", 4)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 2*1024*1024) // 2MB
	v.SetDefault("server.apiKeys", []string{})

	// TLS Configuration
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)
	v.SetDefault("server.tls.autoReload.vaultPollInterval", 5*time.Minute)

	// Rate limiting
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resuin")
	v.SetDefault("observability.serviceVersion", "")  // Uses the build version when empty
	v.SetDefault("observability.serviceInstance", "") // Derived from the hostname when empty
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
