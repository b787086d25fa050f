package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"resuin/internal/config"
	"resuin/internal/errors"
	"resuin/internal/observability"
)

// expiryMetricInterval is how often the certificate expiry gauge is refreshed.
const expiryMetricInterval = time.Minute

// CertificateManager holds the server certificate and swaps it in place when
// the watched files change, so TLS handshakes pick up renewals without a
// restart.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	serverCertExpiry time.Time
	lastReloadTime   time.Time

	fileWatcher  *CertWatcher
	vaultWatcher *VaultWatcher

	config *config.TLSConfig

	reloadCallbacks []ReloadCallback
	logger          *errors.Logger

	observabilityManager *observability.ObservabilityManager

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadSuccess  bool
	lastReloadError    string

	stopExpiry chan struct{}
	stopOnce   sync.Once
}

// ReloadCallback is called when certificates are reloaded
type ReloadCallback func(success bool, err error)

// CertificateMetrics holds metrics about certificate operations
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// NewCertificateManager creates a new certificate manager
func NewCertificateManager(tlsConfig *config.TLSConfig, om *observability.ObservabilityManager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:               tlsConfig,
		logger:               logger,
		observabilityManager: om,
		stopExpiry:           make(chan struct{}),
	}
}

// Start loads the certificate, starts expiry monitoring and, for file
// based certificates with auto reload enabled, the file watcher.
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	cm.StartExpiryMonitoring()

	return cm.startFileWatcher()
}

// startFileWatcher starts the file watcher if enabled and using file-based certificates
func (cm *CertificateManager) startFileWatcher() error {
	if !cm.config.AutoReload.Enabled || cm.config.CertFile == "" || cm.config.KeyFile == "" {
		return nil
	}

	watcher := NewCertWatcher(
		cm.config.CertFile,
		cm.config.KeyFile,
		cm.config.AutoReload.DebounceDelay,
		cm.triggerReload,
		cm.logger,
	)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	cm.fileWatcher = watcher

	return nil
}

// StartVaultWatcher polls secretPath and reloads the certificate from the
// secret content whenever its version increases.
func (cm *CertificateManager) StartVaultWatcher(client SecretReader, secretPath string, pollInterval time.Duration) error {
	watcher := NewVaultWatcher(client, secretPath, pollInterval, cm.applyVaultCertificate, cm.logger)
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	cm.vaultWatcher = watcher
	return nil
}

// applyVaultCertificate replaces the certificate content and reloads.
func (cm *CertificateManager) applyVaultCertificate(data *CertificateData, err error) {
	if err != nil {
		cm.handleReloadError(err)
		return
	}

	cm.mu.Lock()
	cm.config.CertContent = data.CertContent
	cm.config.KeyContent = data.KeyContent
	cm.mu.Unlock()

	if cm.logger != nil {
		cm.logger.Info("Certificate reload triggered by Vault watcher")
	}
	_ = cm.ReloadCertificates()
}

// Stop stops the watchers and expiry monitoring
func (cm *CertificateManager) Stop() error {
	cm.stopOnce.Do(func() { close(cm.stopExpiry) })

	if cm.vaultWatcher != nil {
		if err := cm.vaultWatcher.Stop(); err != nil {
			return err
		}
	}

	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "Failed to stop file watcher")
			}
			return err
		}
	}
	if cm.logger != nil {
		cm.logger.Info("Certificate manager stopped")
	}
	return nil
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}

	if time.Now().After(cm.serverCertExpiry) {
		if cm.logger != nil {
			serverName := ""
			if hello != nil {
				serverName = hello.ServerName
			}
			cm.logger.LogError(fmt.Errorf("server certificate expired"), "Server certificate expired",
				"expiry", cm.serverCertExpiry,
				"server_name", serverName)
		}
		return nil, fmt.Errorf("server certificate expired")
	}

	return cm.serverCert, nil
}

// ReloadCertificates reloads the certificate immediately
func (cm *CertificateManager) ReloadCertificates() error {
	if err := cm.loadCertificates(); err != nil {
		cm.handleReloadError(err)
		return err
	}
	return nil
}

// AddReloadCallback adds a callback to be called when certificates are reloaded
func (cm *CertificateManager) AddReloadCallback(callback ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, callback)
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns certificate management metrics
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// loadCertificates loads the key pair from content or files and swaps it in.
// A failed load keeps the previous certificate.
func (cm *CertificateManager) loadCertificates() error {
	cert, err := cm.loadCertificatePair()
	if err != nil {
		return err
	}
	expiry, err := certificateExpiry(&cert)
	if err != nil {
		return err
	}

	cm.mu.Lock()
	cm.serverCert = &cert
	cm.serverCertExpiry = expiry
	cm.lastReloadTime = time.Now()
	cm.reloadCount++
	cm.reloadSuccessCount++
	cm.lastReloadSuccess = true
	cm.lastReloadError = ""
	callbacks := append([]ReloadCallback(nil), cm.reloadCallbacks...)
	cm.mu.Unlock()

	cm.recordMetrics(nil, expiry)
	for _, callback := range callbacks {
		go callback(true, nil)
	}

	if cm.logger != nil {
		cm.logger.Info("Certificates reloaded successfully",
			"server_cert_expiry", expiry)
	}

	return nil
}

// loadCertificatePair loads the certificate and key pair
func (cm *CertificateManager) loadCertificatePair() (tls.Certificate, error) {
	cm.mu.RLock()
	cfg := *cm.config
	cm.mu.RUnlock()

	if cfg.CertContent != "" && cfg.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}
	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

// certificateExpiry returns the NotAfter of the leaf certificate
func certificateExpiry(cert *tls.Certificate) (time.Time, error) {
	if len(cert.Certificate) == 0 {
		return time.Time{}, fmt.Errorf("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	return leaf.NotAfter, nil
}

// triggerReload is called by the file watcher
func (cm *CertificateManager) triggerReload() {
	if cm.logger != nil {
		cm.logger.Info("Certificate reload triggered by file watcher")
	}
	_ = cm.ReloadCertificates()
}

// handleReloadError records a failed reload
func (cm *CertificateManager) handleReloadError(err error) {
	cm.mu.Lock()
	cm.reloadCount++
	cm.reloadFailureCount++
	cm.lastReloadSuccess = false
	cm.lastReloadError = err.Error()
	callbacks := append([]ReloadCallback(nil), cm.reloadCallbacks...)
	cm.mu.Unlock()

	cm.recordMetrics(err, time.Time{})

	if cm.logger != nil {
		cm.logger.LogError(err, "Failed to reload certificates")
	}

	for _, callback := range callbacks {
		go callback(false, err)
	}
}

func (cm *CertificateManager) recordMetrics(err error, expiry time.Time) {
	if cm.observabilityManager == nil {
		return
	}
	cm.observabilityManager.RecordCertReload(context.Background(), err, expiry)
}

// StartExpiryMonitoring periodically refreshes the certificate expiry gauge
func (cm *CertificateManager) StartExpiryMonitoring() {
	if cm.observabilityManager == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(expiryMetricInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.mu.RLock()
				expiry := cm.serverCertExpiry
				cm.mu.RUnlock()
				if m := cm.observabilityManager.GetMetrics(); m.CertExpiryTime != nil && !expiry.IsZero() {
					m.CertExpiryTime.Record(context.Background(), time.Until(expiry).Seconds())
				}
			case <-cm.stopExpiry:
				return
			}
		}
	}()

	if cm.logger != nil {
		cm.logger.Info("Certificate expiry monitoring started")
	}
}
