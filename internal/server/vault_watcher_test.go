package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/config"
)

// fakeVault serves a single mutable KVv2 secret.
type fakeVault struct {
	mu     sync.Mutex
	secret *config.VaultSecret
	err    error
	reads  int
}

func (f *fakeVault) GetSecretV2(path string) (*config.VaultSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return &config.VaultSecret{Data: f.secret.Data, Version: f.secret.Version}, nil
}

func (f *fakeVault) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeVault) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *fakeVault) set(version int64, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secret = &config.VaultSecret{Data: data, Version: version}
}

type callbackRecorder struct {
	mu    sync.Mutex
	calls []*CertificateData
	errs  []error
}

func (c *callbackRecorder) record(data *CertificateData, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, data)
	c.errs = append(c.errs, err)
}

func TestVaultWatcherPoll(t *testing.T) {
	vault := &fakeVault{}
	vault.set(1, map[string]any{"cert": "cert-v1", "key": "key-v1"})
	rec := &callbackRecorder{}

	vw := NewVaultWatcher(vault, "secret/data/tls", time.Hour, rec.record, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(func() { _ = vw.Stop() })

	assert.EqualValues(t, 1, vw.Status()["last_version"], "start seeds the current version")

	vw.poll()
	assert.Empty(t, rec.calls, "unchanged version does not call back")

	vault.set(2, map[string]any{"cert": "cert-v2", "key": "key-v2"})
	vw.poll()
	require.Len(t, rec.calls, 1)
	require.NoError(t, rec.errs[0])
	assert.Equal(t, &CertificateData{CertContent: "cert-v2", KeyContent: "key-v2"}, rec.calls[0])
	assert.EqualValues(t, 2, vw.Status()["last_version"])

	vault.set(3, map[string]any{"cert": "cert-v3"})
	vw.poll()
	require.Len(t, rec.calls, 2)
	assert.Nil(t, rec.calls[1])
	assert.ErrorContains(t, rec.errs[1], "must contain both cert and key")
}

func TestVaultWatcherReadErrorSkipsCallback(t *testing.T) {
	vault := &fakeVault{err: fmt.Errorf("permission denied")}
	rec := &callbackRecorder{}

	vw := NewVaultWatcher(vault, "secret/data/tls", time.Hour, rec.record, nil)
	require.NoError(t, vw.Start(), "an unreadable secret at start is logged, not fatal")
	t.Cleanup(func() { _ = vw.Stop() })

	vw.poll()
	assert.Empty(t, rec.calls)
	assert.Equal(t, 2, vault.reads)
}

func TestVaultWatcherCircuitBreakerOpensAfterFailures(t *testing.T) {
	vault := &fakeVault{err: fmt.Errorf("connection refused")}
	rec := &callbackRecorder{}

	vw := NewVaultWatcher(vault, "secret/data/tls", time.Hour, rec.record, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(func() { _ = vw.Stop() })

	vw.poll()
	vw.poll()
	assert.Equal(t, 3, vault.readCount())
	breaker := vw.Status()["circuit_breaker"].(map[string]any)
	assert.Equal(t, "open", breaker["state"])

	vw.poll()
	assert.Equal(t, 3, vault.readCount(), "open circuit skips the read")
	assert.Empty(t, rec.calls)
}

func TestVaultWatcherCircuitBreakerRecovers(t *testing.T) {
	vault := &fakeVault{err: fmt.Errorf("connection refused")}
	vault.set(7, map[string]any{"cert": "c", "key": "k"})
	rec := &callbackRecorder{}

	vw := NewVaultWatcher(vault, "secret/data/tls", 10*time.Millisecond, rec.record, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(func() { _ = vw.Stop() })

	state := func() any { return vw.Status()["circuit_breaker"].(map[string]any)["state"] }
	require.Eventually(t, func() bool { return state() == "open" }, 2*time.Second, 5*time.Millisecond)

	vault.fail(nil)
	require.Eventually(t, func() bool {
		return state() == "closed" && vw.Status()["last_version"] == int64(7)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestVaultWatcherLifecycle(t *testing.T) {
	vault := &fakeVault{}
	vault.set(1, map[string]any{"cert": "c", "key": "k"})

	vw := NewVaultWatcher(vault, "secret/data/tls", 0, func(*CertificateData, error) {}, nil)
	assert.ErrorContains(t, vw.Start(), "poll interval must be positive")

	vw = NewVaultWatcher(vault, "secret/data/tls", time.Hour, func(*CertificateData, error) {}, nil)
	require.NoError(t, vw.Start())
	assert.Error(t, vw.Start(), "second start fails")

	status := vw.Status()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, "1h0m0s", status["poll_interval"])
	assert.Equal(t, "secret/data/tls", status["secret_path"])

	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.Equal(t, false, vw.Status()["running"])
}

func TestVaultWatcherPollsOnTicker(t *testing.T) {
	vault := &fakeVault{}
	vault.set(1, map[string]any{"cert": "c1", "key": "k1"})
	rec := &callbackRecorder{}

	vw := NewVaultWatcher(vault, "secret/data/tls", 10*time.Millisecond, rec.record, nil)
	require.NoError(t, vw.Start())
	t.Cleanup(func() { _ = vw.Stop() })

	vault.set(5, map[string]any{"cert": "c5", "key": "k5"})
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCertificateManagerVaultRotation(t *testing.T) {
	certV1, keyV1 := generateCert(t, time.Now().Add(24*time.Hour).Truncate(time.Second))
	renewed := time.Now().Add(60 * 24 * time.Hour).Truncate(time.Second)
	certV2, keyV2 := generateCert(t, renewed)

	vault := &fakeVault{}
	vault.set(1, map[string]any{"cert": string(certV1), "key": string(keyV1)})

	cm := NewCertificateManager(&config.TLSConfig{
		Mode:        "server",
		CertContent: string(certV1),
		KeyContent:  string(keyV1),
	}, nil, nil)
	require.NoError(t, cm.Start())
	require.NoError(t, cm.StartVaultWatcher(vault, "secret/data/tls", time.Hour))
	t.Cleanup(func() { _ = cm.Stop() })

	vault.set(2, map[string]any{"cert": string(certV2), "key": string(keyV2)})
	cm.vaultWatcher.poll()

	cert, err := cm.GetServerCertificate(nil)
	require.NoError(t, err)
	assert.True(t, leafExpiry(t, cert).Equal(renewed))
	assert.EqualValues(t, 2, cm.GetMetrics().ReloadSuccessCount)

	// A broken secret is a failed reload; the rotated certificate stays.
	vault.set(3, map[string]any{"cert": "garbage", "key": "garbage"})
	cm.vaultWatcher.poll()

	cert, err = cm.GetServerCertificate(nil)
	require.NoError(t, err)
	assert.True(t, leafExpiry(t, cert).Equal(renewed))
	m := cm.GetMetrics()
	assert.EqualValues(t, 1, m.ReloadFailureCount)
	assert.False(t, m.LastReloadSuccess)
}

func TestStartVaultWatcherFromServerConfig(t *testing.T) {
	certPEM, keyPEM := generateCert(t, time.Now().Add(30*24*time.Hour))
	vault := &fakeVault{}
	vault.set(4, map[string]any{"cert": string(certPEM), "key": string(keyPEM)})

	s := newTestServer(t, func(c *ServerConfig) {
		c.TLSConfig = config.TLSConfig{
			Mode:        "server",
			CertContent: string(certPEM),
			KeyContent:  string(keyPEM),
			AutoReload:  config.AutoReloadConfig{Enabled: true, VaultPollInterval: time.Hour},
		}
	})
	s.AppConfig.Vault.Enabled = true
	s.AppConfig.Vault.Secrets.TLSCerts = "secret/data/tls"
	s.SecretReader = vault

	require.NoError(t, s.configureTLS(s.setupHTTPServer()))
	t.Cleanup(s.cleanup)

	require.NotNil(t, s.CertificateManager.vaultWatcher)
	assert.EqualValues(t, 4, s.CertificateManager.vaultWatcher.Status()["last_version"])
	assert.Nil(t, s.CertificateManager.fileWatcher)

	health := s.checkCertificateHealth()
	autoReload := health["auto_reload"].(map[string]any)
	assert.Contains(t, autoReload, "vault_watcher")
}
