package cli

import (
	"context"

	"resuin/internal/config"
	"resuin/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resuin",
		Short: "Score resumes against company ATS profiles",
		Long: `Resuin analyzes a resume the way an applicant tracking system would.
It scores section completeness, keyword coverage and ATS compatibility
against a company profile, optionally blends in a job description, and
suggests concrete improvements.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newCompaniesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command line with args taken from os.Args.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	return newRootCmd().ExecuteContext(withDependencies(ctx, cfg, logger))
}

// withDependencies attaches the config and logger to the context, making
// them available to all subcommands
func withDependencies(ctx context.Context, cfg *config.Config, logger *errors.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey, cfg)
	return context.WithValue(ctx, loggerKey, logger)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}
