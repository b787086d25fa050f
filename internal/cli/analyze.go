package cli

import (
	"context"
	"fmt"

	"resuin/internal/analyzer"
	"resuin/internal/common"
	"resuin/internal/types"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	output      common.CommandConfig
	jd          jobDescriptionFlags
	company     string
	mode        string
	interactive bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [resume-file]",
		Short: "Score a resume against a company ATS profile",
		Long: `Analyze a resume against one company profile the way that company's
applicant tracking system would.

The report includes:
- Overall, keyword, section completeness and ATS compatibility scores
- Per-section status and feedback
- Matched and missing keywords
- Company culture fit
- Prioritized improvement suggestions

The resume may be plain text, HTML or DOCX. Pass a job description with
--jd or --jd-text to blend its keywords into the keyword score.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutput(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.company, "company", "c", "", "Company profile id (default from config)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Scoring mode: rule_based or smart (default: the profile's mode)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Choose the company and mode from a menu when not given as flags")
	opts.jd.register(cmd)
	addOutputFlags(cmd, &opts.output)

	_ = cmd.RegisterFlagCompletionFunc("company", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return analyzer.New().Registry().IDs(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", modeCompletion)

	return cmd
}

func modeCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	modes := make([]string, 0, len(types.Modes()))
	for _, m := range types.Modes() {
		modes = append(modes, string(m))
	}
	return modes, cobra.ShellCompDirectiveNoFileComp
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	az, err := analyzer.FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load company profiles: %w", err)
	}

	company := opts.company
	if company == "" && opts.interactive {
		if company, err = selectCompany(az.Registry().IDs()); err != nil {
			return err
		}
	}
	if company == "" {
		company = cfg.Analysis.DefaultCompany
	}

	mode, err := modeFlag(opts.mode, cfg.Analysis.Mode())
	if err != nil {
		return err
	}
	if opts.mode == "" && opts.interactive {
		if mode, err = selectMode(); err != nil {
			return err
		}
	}

	logDetails := func(documents []string, cc common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"company", company,
			"mode", string(mode),
			"resume_chars", len(documents[0]),
			"job_description_chars", len(opts.jd.resolve(documents)),
			"output_format", cc.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, documents []string) (types.AnalysisReport, error) {
		return az.AnalyzeContext(ctx, documents[0], company, opts.jd.resolve(documents), mode)
	}

	err = common.RunCommand(
		cmd.Context(),
		logger,
		cmd.OutOrStdout(),
		opts.output,
		opts.jd.files(args[0]),
		analyzeOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully", "company", company)
	return nil
}
