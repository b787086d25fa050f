package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks reads comma-separated API keys from the
// environment. Viper splits env lists without trimming.
func (c *Config) applyServerAPIKeyFallbacks() {
	if apiKeysEnv := os.Getenv(envPrefix + "_SERVER_APIKEYS"); apiKeysEnv != "" {
		c.Server.APIKeys = splitList(apiKeysEnv)
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		envPrefix + "_ANALYSIS_DEFAULTCOMPANY",
		envPrefix + "_ANALYSIS_DEFAULTMODE",
		envPrefix + "_ANALYSIS_PROFILESFILE",
		envPrefix + "_SERVER_PORT",
		envPrefix + "_SERVER_HOST",
		envPrefix + "_SERVER_APIKEYS",
		envPrefix + "_APP_LOGLEVEL",
		envPrefix + "_VAULT_ENABLED",
		envPrefix + "_VAULT_TOKEN",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Default Company: %s", c.Analysis.DefaultCompany)
	if c.Analysis.DefaultMode != "" {
		log.Printf("[CONFIG] Default Mode: %s", c.Analysis.DefaultMode)
	} else {
		log.Println("[CONFIG] Default Mode: per company profile")
	}
	if c.Analysis.ProfilesFile != "" {
		log.Printf("[CONFIG] Profiles File: %s", c.Analysis.ProfilesFile)
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] API Keys: %d configured", len(c.Server.APIKeys))
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
