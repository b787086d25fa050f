package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	resuinErrors "resuin/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// APIKeys is a KVv2 path whose "keys" field holds comma-separated keys.
	APIKeys string `mapstructure:"apiKeys"`
	// TLSCerts is a KVv2 path with "cert" and "key" PEM fields.
	TLSCerts string `mapstructure:"tlsCerts"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *resuinErrors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient creates a Vault client. It returns nil when Vault is
// disabled.
func NewVaultClient(config VaultConfig, logger *resuinErrors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", vaultConfig.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		data, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return parseKVv2(secret.Data, path)
}

// parseKVv2 unpacks the data and metadata envelope of a KVv2 read.
func parseKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses version value from various types
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// String returns a string field of the secret.
func (s *VaultSecret) String(key string) (string, error) {
	value, ok := s.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret", key)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string", key)
	}
	return str, nil
}

// ApplyVaultSecrets loads API keys and TLS material from Vault into config.
func ApplyVaultSecrets(config *Config, logger *resuinErrors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return applySecrets(client, config, logger)
}

// secretSource is the part of VaultClient secret loading depends on.
type secretSource interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

func applySecrets(src secretSource, config *Config, logger *resuinErrors.Logger) error {
	paths := config.Vault.Secrets

	if paths.APIKeys != "" {
		secret, err := src.GetSecretV2(paths.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		keys, err := secret.String("keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if list := splitList(keys); len(list) > 0 {
			config.Server.APIKeys = list
			if logger != nil {
				logger.Info("API keys loaded from Vault", "count", len(list))
			}
		} else if logger != nil {
			logger.Warn("No API keys found in Vault", "path", paths.APIKeys)
		}
	}

	if paths.TLSCerts != "" {
		secret, err := src.GetSecretV2(paths.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		if n := applyTLSSecret(config, secret); logger != nil {
			logger.Info("TLS certificates loaded from Vault", "certificates_loaded", n, "version", secret.Version)
		}
	}

	return nil
}

// applyTLSSecret copies certificate content from secret into config and
// reports how many fields were set. Content replaces any configured file.
func applyTLSSecret(config *Config, secret *VaultSecret) int {
	loaded := 0
	if cert, _ := secret.String("cert"); cert != "" {
		config.Server.TLS.CertContent = cert
		config.Server.TLS.CertFile = ""
		loaded++
	}
	if key, _ := secret.String("key"); key != "" {
		config.Server.TLS.KeyContent = key
		config.Server.TLS.KeyFile = ""
		loaded++
	}
	return loaded
}
