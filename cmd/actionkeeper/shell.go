package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/actionkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/actionkeeper/internal/client/cli"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		buildinfo.PrintBuildData(os.Stdout)
		return withSession(cmd, true, func(ctx context.Context, app *cli.App) error {
			app.Shell(ctx)
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	// No config or database needed.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "actionkeeper version %s\n", buildinfo.Version())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd, versionCmd)
}
