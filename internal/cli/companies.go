package cli

import (
	"context"
	"fmt"

	"resuin/internal/analyzer"
	"resuin/internal/common"
	"resuin/internal/types"

	"github.com/spf13/cobra"
)

func newCompaniesCmd() *cobra.Command {
	var output common.CommandConfig

	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List the registered company profiles",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutput(cmd, &output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())

			az, err := analyzer.FromConfig(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to load company profiles: %w", err)
			}

			list := func(context.Context, []string) (types.CompanyList, error) {
				return az.Companies(), nil
			}
			return common.RunCommand(cmd.Context(), logger, cmd.OutOrStdout(), output, nil, list, nil)
		},
	}
	addOutputFlags(cmd, &output)

	return cmd
}
