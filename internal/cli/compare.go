package cli

import (
	"context"
	"fmt"

	"resuin/internal/analyzer"
	"resuin/internal/common"
	"resuin/internal/types"

	"github.com/spf13/cobra"
)

type compareOptions struct {
	output common.CommandConfig
	jd     jobDescriptionFlags
	mode   string
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [resume-file]",
		Short: "Score a resume against every company profile",
		Long: `Compare runs the analysis against every registered company profile and
lists the results from best to worst overall score. Use it to find which
companies' screening systems the resume is already well suited for.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutput(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Scoring mode: rule_based or smart (default: each profile's mode)")
	opts.jd.register(cmd)
	addOutputFlags(cmd, &opts.output)
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletion)

	return cmd
}

func runCompare(cmd *cobra.Command, args []string, opts *compareOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	az, err := analyzer.FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load company profiles: %w", err)
	}

	mode, err := modeFlag(opts.mode, cfg.Analysis.Mode())
	if err != nil {
		return err
	}

	logDetails := func(documents []string, cc common.CommandConfig) {
		logger.Info("Starting resume comparison",
			"companies", len(az.Registry().Profiles()),
			"mode", string(mode),
			"resume_chars", len(documents[0]),
			"output_format", cc.OutputFormat)
	}

	compareOperation := func(ctx context.Context, documents []string) (types.Comparison, error) {
		return az.Compare(ctx, documents[0], opts.jd.resolve(documents), mode)
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		cmd.OutOrStdout(),
		opts.output,
		opts.jd.files(args[0]),
		compareOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to compare resume: %w", err)
	}
	logger.Info("Resume comparison completed successfully")
	return nil
}
