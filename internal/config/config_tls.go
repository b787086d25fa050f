package config

import "fmt"

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}

	if err := validateTLSVersion(tls); err != nil {
		return err
	}

	if tls.AutoReload.Enabled && tls.AutoReload.DebounceDelay < 0 {
		return fmt.Errorf("autoReload debounceDelay must not be negative")
	}

	if tls.AutoReload.Enabled && tls.AutoReload.VaultPollInterval < 0 {
		return fmt.Errorf("autoReload vaultPollInterval must not be negative")
	}

	return nil
}

// validateTLSMode validates the TLS mode and associated requirements
func validateTLSMode(tls TLSConfig) error {
	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		if err := validateCertAndKeyRequired(tls); err != nil {
			return err
		}
		return validateNoDuplicateCertSources(tls)
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", tls.Mode)
	}
}

// validateCertAndKeyRequired checks that both certificate and key are provided
func validateCertAndKeyRequired(tls TLSConfig) error {
	if (tls.CertFile == "" && tls.CertContent == "") || (tls.KeyFile == "" && tls.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for server mode (provide either files or content)")
	}
	return nil
}

// validateNoDuplicateCertSources ensures no duplicate sources for cert and key
func validateNoDuplicateCertSources(tls TLSConfig) error {
	if tls.CertFile != "" && tls.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if tls.KeyFile != "" && tls.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

// validateTLSVersion validates the TLS version configuration
func validateTLSVersion(tls TLSConfig) error {
	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
