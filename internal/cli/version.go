package cli

import (
	"fmt"

	"resuin/internal/profiles"

	"github.com/spf13/cobra"
)

var (
	// Version information - can be set during build with ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information for resuin and its embedded data tables",
		Run: func(cmd *cobra.Command, args []string) {
			reg := profiles.Default()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "resuin version %s\n", Version)
			fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", BuildDate)
			fmt.Fprintf(out, "Profile catalog: %s\n", reg.Version())
			fmt.Fprintf(out, "Keyword lexicon: %s\n", reg.Extractor().Version())
		},
	}
}
