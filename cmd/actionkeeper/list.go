package main

import (
	"context"

	"github.com/dmitrijs2005/actionkeeper/internal/client/cli"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all locally recorded actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, app *cli.App) error {
			if listJSON {
				return app.ListJSON(ctx)
			}
			return app.List(ctx)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded action with its signature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, app *cli.App) error {
			return app.Show(ctx, args[0])
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-check hashes, signatures and the ledger state hash",
	Long: `Recompute every record's action hash, verify every signature against
the device public key, and recompute the ledger state hash. Exits non-zero
if anything does not match. Nothing is modified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, app *cli.App) error {
			return app.Verify(ctx)
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the ledger checkpoint, key fingerprint and store slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, app *cli.App) error {
			return app.Info(ctx)
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd, showCmd, verifyCmd, infoCmd)
}
