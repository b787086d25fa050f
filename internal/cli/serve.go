package cli

import (
	"context"
	"fmt"
	"time"

	"resuin/internal/analyzer"
	"resuin/internal/config"
	"resuin/internal/observability"
	"resuin/internal/server"

	"github.com/spf13/cobra"
)

// telemetryFlushTimeout bounds the final export of traces and metrics.
const telemetryFlushTimeout = 5 * time.Second

type serveOptions struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for resume analysis",
		Long: `Start an HTTP server that provides REST API endpoints for resume analysis.

Available endpoints:
- POST /analyze: Analyze resume text against a company profile
- POST /analyze/upload: Analyze an uploaded resume file (text, HTML or DOCX)
- POST /compare: Compare a resume across every company profile
- GET /companies: List company profiles
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&opts.tlsMode, "tls-mode", "", "TLS mode: disabled, server (overrides config)")
	cmd.Flags().StringVar(&opts.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")

	return cmd
}

// applyServeOverrides copies explicitly set flags onto the server config.
func applyServeOverrides(cmd *cobra.Command, opts *serveOptions, sc *config.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		sc.Port = opts.port
	}
	if flags.Changed("host") {
		sc.Host = opts.host
	}
	if flags.Changed("tls-mode") {
		sc.TLS.Mode = opts.tlsMode
	}
	if flags.Changed("cert-file") {
		sc.TLS.CertFile = opts.certFile
		sc.TLS.CertContent = ""
	}
	if flags.Changed("key-file") {
		sc.TLS.KeyFile = opts.keyFile
		sc.TLS.KeyContent = ""
	}
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeOverrides(cmd, opts, &cfg.Server)

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	az, err := analyzer.FromConfig(cfg, logger, analyzer.WithObserver(om))
	if err != nil {
		return fmt.Errorf("failed to load company profiles: %w", err)
	}

	srv := server.NewServer(cfg, server.ConfigFrom(cfg, Version), az, om, logger)
	return srv.Run(cmd.Context())
}
