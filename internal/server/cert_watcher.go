package server

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resuin/internal/errors"
)

// CertWatcher watches the directories holding the certificate and key and
// calls back, debounced, once the content of either file has changed.
// Directories rather than files are watched so atomic renames (as done by
// cert-manager and Kubernetes secret mounts) are seen.
type CertWatcher struct {
	mu sync.Mutex

	files         []string
	fingerprints  map[string][32]byte
	debounceDelay time.Duration
	onChange      func()
	logger        *errors.Logger

	fsWatcher *fsnotify.Watcher
	timer     *time.Timer
	done      chan struct{}
	running   bool
}

// NewCertWatcher creates a watcher for certFile and keyFile. A
// non-positive debounceDelay defaults to one second.
func NewCertWatcher(certFile, keyFile string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	var files []string
	for _, f := range []string{certFile, keyFile} {
		if f != "" {
			files = append(files, filepath.Clean(f))
		}
	}
	return &CertWatcher{
		files:         files,
		fingerprints:  make(map[string][32]byte),
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. It fails if the watcher is already running or no
// directory could be watched.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := 0
	for _, dir := range cw.dirs() {
		if err := w.Add(dir); err != nil {
			if cw.logger != nil {
				cw.logger.Warn("Failed to watch certificate directory", "directory", dir, "error", err)
			}
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = w.Close()
		return fmt.Errorf("no certificate directory could be watched")
	}

	for _, f := range cw.files {
		if sum, ok := fingerprint(f); ok {
			cw.fingerprints[f] = sum
		}
	}

	cw.fsWatcher = w
	cw.done = make(chan struct{})
	cw.running = true
	go cw.loop(w, cw.done)

	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher started",
			"files", cw.files,
			"debounce_delay", cw.debounceDelay)
	}
	return nil
}

// Stop stops watching. Stopping a stopped watcher is a no-op.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	cw.running = false
	close(cw.done)
	if cw.timer != nil {
		cw.timer.Stop()
	}

	if err := cw.fsWatcher.Close(); err != nil {
		if cw.logger != nil {
			cw.logger.LogError(err, "Failed to close file system watcher")
		}
		return err
	}
	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher stopped")
	}
	return nil
}

// IsRunning returns whether the watcher is currently running
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.running
}

// GetWatchedFiles returns the certificate files being watched
func (cw *CertWatcher) GetWatchedFiles() []string {
	return slices.Clone(cw.files)
}

func (cw *CertWatcher) dirs() []string {
	var dirs []string
	for _, f := range cw.files {
		if d := filepath.Dir(f); !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

func (cw *CertWatcher) loop(w *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			if cw.logger != nil {
				cw.logger.LogError(err, "File watcher error")
			}
		case <-done:
			return
		}
	}
}

// relevant reports whether event touches a watched file in a way that may
// change its content.
func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return slices.ContainsFunc(cw.files, func(f string) bool {
		// Kubernetes swaps a ..data symlink, so a change to any sibling counts.
		return f == name || filepath.Base(name) == "..data" && filepath.Dir(f) == filepath.Dir(name)
	})
}

// debounce restarts the quiet period after which changes are checked.
func (cw *CertWatcher) debounce() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if !cw.running {
		return
	}
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounceDelay, cw.checkChanged)
}

// checkChanged refreshes every fingerprint and calls back if any differ.
func (cw *CertWatcher) checkChanged() {
	cw.mu.Lock()
	if !cw.running {
		cw.mu.Unlock()
		return
	}
	changed := false
	for _, f := range cw.files {
		sum, ok := fingerprint(f)
		if !ok {
			continue
		}
		if prev, seen := cw.fingerprints[f]; !seen || prev != sum {
			cw.fingerprints[f] = sum
			changed = true
		}
	}
	cw.mu.Unlock()

	if changed {
		if cw.logger != nil {
			cw.logger.Info("Certificate files changed, triggering reload")
		}
		cw.onChange()
	}
}

// fingerprint hashes a file's content. Unreadable files report false and
// keep their previous fingerprint, so a half-written rotation is retried on
// the next event.
func fingerprint(path string) ([32]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, false
	}
	return sha256.Sum256(data), true
}
