package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of inspect.`,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("inspect %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
		},
	}
	return cmd
}
