package cli

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"resuin/internal/common"
	"resuin/internal/types"
)

// addOutputFlags registers --output and --format with format completion.
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutput applies the configured defaults and normalizes the format.
func resolveOutput(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	// Apply default format if not specified
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	cc.MaxFileSize = cfg.App.MaxFileSize

	format, err := common.NormalizeOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
	if err != nil {
		return err
	}
	cc.OutputFormat = format
	return nil
}

// jobDescriptionFlags holds the two mutually exclusive ways of passing a
// job description.
type jobDescriptionFlags struct {
	file string
	text string
}

func (j *jobDescriptionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&j.file, "jd", "", "Job description file to blend into keyword scoring")
	cmd.Flags().StringVar(&j.text, "jd-text", "", "Job description text to blend into keyword scoring")
	cmd.MarkFlagsMutuallyExclusive("jd", "jd-text")
}

// files returns the resume path followed by the job description path, if any.
func (j *jobDescriptionFlags) files(resumeFile string) []string {
	if j.file == "" {
		return []string{resumeFile}
	}
	return []string{resumeFile, j.file}
}

// resolve picks the job description from the extracted documents or the
// inline text.
func (j *jobDescriptionFlags) resolve(documents []string) string {
	if len(documents) > 1 {
		return documents[1]
	}
	return j.text
}

// modeFlag resolves --mode against the configured default.
func modeFlag(value string, fallback types.Mode) (types.Mode, error) {
	if value == "" {
		return fallback, nil
	}
	mode, err := types.ParseMode(value)
	if err != nil {
		return "", fmt.Errorf("invalid --mode: %w", err)
	}
	return mode, nil
}

// profileDefaultMode is the interactive choice that defers to the company
// profile's own mode.
const profileDefaultMode = "profile default"

// selectOption asks the user to pick one of items. Tests replace it.
var selectOption = func(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	_, selected, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return selected, nil
}

func selectCompany(ids []string) (string, error) {
	return selectOption("Company profile", ids)
}

func selectMode() (types.Mode, error) {
	items := []string{profileDefaultMode}
	for _, m := range types.Modes() {
		items = append(items, string(m))
	}
	selected, err := selectOption("Scoring mode", items)
	if err != nil {
		return "", err
	}
	if selected == profileDefaultMode {
		return "", nil
	}
	return types.Mode(selected), nil
}
