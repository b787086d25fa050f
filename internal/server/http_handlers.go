package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// Certificates expiring within these windows are reported as critical or
// warning on /health.
const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// healthHandler reports service status, loaded profiles and certificate state
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	registry := s.Analyzer.Registry()
	response := map[string]any{
		"status":  "healthy",
		"service": "resuin",
		"version": s.Version,
		"profiles": map[string]any{
			"count":           len(registry.Profiles()),
			"catalog_version": registry.Version(),
			"lexicon_version": registry.Extractor().Version(),
		},
	}

	status := http.StatusOK
	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if healthy, ok := certStatus["healthy"].(bool); ok && !healthy {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)

	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	certStatus["time_to_expiry"] = timeToExpiry.String()

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	case timeToExpiry <= certCriticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= certWarningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	autoReload := map[string]any{"enabled": s.TLSConfig.AutoReload.Enabled}
	if watcher := s.CertificateManager.fileWatcher; watcher != nil {
		autoReload["file_watcher_running"] = watcher.IsRunning()
		autoReload["watched_files"] = watcher.GetWatchedFiles()
	}
	if watcher := s.CertificateManager.vaultWatcher; watcher != nil {
		autoReload["vault_watcher"] = watcher.Status()
	}
	certStatus["auto_reload"] = autoReload

	metrics := s.CertificateManager.GetMetrics()
	certStatus["metrics"] = map[string]any{
		"reload_count":         metrics.ReloadCount,
		"reload_success_count": metrics.ReloadSuccessCount,
		"reload_failure_count": metrics.ReloadFailureCount,
		"last_reload_time":     metrics.LastReloadTime,
		"last_reload_success":  metrics.LastReloadSuccess,
		"last_reload_error":    metrics.LastReloadError,
	}

	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	registry := s.Analyzer.Registry()
	response := map[string]any{
		"service": "resuin",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(s.APIKeys),
		},
		"analysis": map[string]any{
			"companies":       registry.IDs(),
			"catalog_version": registry.Version(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes): %w", maxBytesErr.Limit, err)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// validationMessage reports the first failed field of a validator error.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
