package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"resuin/internal/config"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "server":
		fmt.Printf("Starting server with HTTPS on https://%s\n", addr)
		return s.configureServerTLS(httpServer)
	case "", "disabled":
		fmt.Printf("Starting server on http://%s\n", addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// configureServerTLS loads the server certificate through a
// CertificateManager so renewed files are served without a restart.
func (s *Server) configureServerTLS(httpServer *http.Server) error {
	certManager := NewCertificateManager(&s.TLSConfig, s.Observability, s.Logger)
	if err := certManager.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = certManager

	certManager.AddReloadCallback(func(success bool, err error) {
		if success {
			s.Logger.Info("TLS certificates reloaded successfully")
		} else {
			s.Logger.LogError(err, "Failed to reload TLS certificates")
		}
	})

	if err := s.startVaultWatcher(certManager); err != nil {
		return err
	}

	httpServer.TLSConfig = s.buildTLSConfig()
	s.displayAutoReloadInfo()
	return nil
}

// startVaultWatcher polls Vault for certificate updates when the
// certificate content came from Vault and polling is configured.
func (s *Server) startVaultWatcher(certManager *CertificateManager) error {
	reload := s.TLSConfig.AutoReload
	if s.AppConfig == nil || !reload.Enabled || reload.VaultPollInterval <= 0 {
		return nil
	}
	vault := s.AppConfig.Vault
	if !vault.Enabled || vault.Secrets.TLSCerts == "" {
		return nil
	}

	client := s.SecretReader
	if client == nil {
		vc, err := config.NewVaultClient(vault, s.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Vault client: %w", err)
		}
		client = vc
	}
	return certManager.StartVaultWatcher(client, vault.Secrets.TLSCerts, reload.VaultPollInterval)
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig() *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion: tlsVersion(s.TLSConfig.MinVersion),
		ClientAuth: tls.NoClientCert,
	}
	if s.CertificateManager != nil {
		tlsConfig.GetCertificate = s.CertificateManager.GetServerCertificate
	}
	return tlsConfig
}

// tlsVersion maps the configured minimum version, defaulting to TLS 1.2
func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// displayAutoReloadInfo shows auto-reload configuration
func (s *Server) displayAutoReloadInfo() {
	cm := s.CertificateManager
	if cm == nil || (cm.fileWatcher == nil && cm.vaultWatcher == nil) {
		fmt.Println("TLS auto-reload: DISABLED")
		return
	}
	fmt.Println("TLS auto-reload: ENABLED")
	if cm.fileWatcher != nil {
		fmt.Printf("  - Watching %v\n", cm.fileWatcher.GetWatchedFiles())
	}
	if cm.vaultWatcher != nil {
		fmt.Printf("  - Polling Vault secret %s every %s\n", cm.vaultWatcher.secretPath, cm.vaultWatcher.pollInterval)
	}
}
