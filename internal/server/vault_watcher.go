package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"resuin/internal/config"
	"resuin/internal/errors"
)

// SecretReader reads KVv2 secrets. *config.VaultClient implements it.
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// CertificateData holds certificate data fetched from Vault
type CertificateData struct {
	CertContent string
	KeyContent  string
}

// VaultReloadCallback is called when new certificate data is available from Vault
type VaultReloadCallback func(data *CertificateData, err error)

// vaultBreakerFailures consecutive failed reads open the circuit; it stays
// open for vaultBreakerPolls poll intervals before a trial read.
const (
	vaultBreakerFailures = 3
	vaultBreakerPolls    = 3
)

// VaultWatcher polls a Vault secret and calls back with fresh certificate
// content whenever the secret version increases. Reads go through a
// circuit breaker so an unreachable Vault is not hit on every tick.
type VaultWatcher struct {
	mu sync.RWMutex

	client         SecretReader
	breaker        *gobreaker.CircuitBreaker[*config.VaultSecret]
	secretPath     string
	pollInterval   time.Duration
	reloadCallback VaultReloadCallback
	logger         *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client SecretReader, secretPath string, pollInterval time.Duration, reloadCallback VaultReloadCallback, logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:         client,
		breaker:        newVaultBreaker(secretPath, pollInterval, logger),
		secretPath:     secretPath,
		pollInterval:   pollInterval,
		reloadCallback: reloadCallback,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

func newVaultBreaker(secretPath string, pollInterval time.Duration, logger *errors.Logger) *gobreaker.CircuitBreaker[*config.VaultSecret] {
	settings := gobreaker.Settings{
		Name:        "vault:" + secretPath,
		MaxRequests: 1,
		Timeout:     vaultBreakerPolls * pollInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= vaultBreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Vault circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String())
			}
		},
	}
	return gobreaker.NewCircuitBreaker[*config.VaultSecret](settings)
}

// readSecret reads the watched secret through the circuit breaker.
func (vw *VaultWatcher) readSecret() (*config.VaultSecret, error) {
	return vw.breaker.Execute(func() (*config.VaultSecret, error) {
		return vw.client.GetSecretV2(vw.secretPath)
	})
}

// Start records the current secret version and begins polling.
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("vault poll interval must be positive")
	}

	// The certificate already loaded at startup is this version.
	if _, err := vw.checkForUpdates(); err != nil && vw.logger != nil {
		vw.logger.LogError(err, "Failed to read initial Vault secret version")
	}

	vw.running = true
	go vw.pollLoop()
	if vw.logger != nil {
		vw.logger.Info("Vault watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	}
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	if vw.logger != nil {
		vw.logger.Info("Vault watcher stopped")
	}
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll checks the secret version once and hands new content to the callback
func (vw *VaultWatcher) poll() {
	vw.mu.Lock()
	changed, err := vw.checkForUpdates()
	vw.mu.Unlock()
	if err != nil {
		if vw.logger != nil {
			vw.logger.LogError(err, "Failed to check Vault for updates")
		}
		return
	}
	if !changed {
		return
	}

	if vw.logger != nil {
		vw.logger.Info("Vault secret changed, fetching new certificate data")
	}
	vw.reloadCallback(vw.fetchNewCertsFromVault())
}

// checkForUpdates reports whether the secret version has increased. The
// caller holds vw.mu.
func (vw *VaultWatcher) checkForUpdates() (bool, error) {
	secret, err := vw.readSecret()
	if err != nil {
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret.Version > vw.lastVersion {
		vw.lastVersion = secret.Version
		return true, nil
	}
	return false, nil
}

// fetchNewCertsFromVault fetches new certificate data from Vault
func (vw *VaultWatcher) fetchNewCertsFromVault() (*CertificateData, error) {
	secret, err := vw.readSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch new TLS data from vault: %w", err)
	}

	data := &CertificateData{}
	data.CertContent, _ = secret.String("cert")
	data.KeyContent, _ = secret.String("key")
	if data.CertContent == "" || data.KeyContent == "" {
		return nil, fmt.Errorf("vault secret %s must contain both cert and key", vw.secretPath)
	}
	return data, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	breaker := map[string]any{
		"state":                vw.breaker.State().String(),
		"consecutive_failures": vw.breaker.Counts().ConsecutiveFailures,
	}
	return map[string]any{
		"running":         vw.running,
		"poll_interval":   vw.pollInterval.String(),
		"secret_path":     vw.secretPath,
		"last_version":    vw.lastVersion,
		"circuit_breaker": breaker,
	}
}
