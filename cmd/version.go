package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "segcheck %s (commit %s, branch %s, built %s)\n",
			Version, GitCommit, GitBranch, BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
