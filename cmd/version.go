package cmd

import (
	"fmt"

	"github.com/harlequix/infopipe/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	// config is not needed to print the version
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "Build Date:", version.BuildDate)
		fmt.Fprintln(cmd.OutOrStdout(), "Git Commit:", version.GitCommit)
		fmt.Fprintln(cmd.OutOrStdout(), "Version:", version.Version)
		fmt.Fprintln(cmd.OutOrStdout(), "Go Version:", version.GoVersion)
		fmt.Fprintln(cmd.OutOrStdout(), "OS / Arch:", version.OsArch)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
