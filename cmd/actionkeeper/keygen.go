package main

import (
	"context"

	"github.com/dmitrijs2005/actionkeeper/internal/client/cli"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the device signing key, replacing any existing one",
	Long: `Generate a new ECDSA P-256 device key pair. The private key is sealed
with the key passphrase and never leaves the vault. Any previous key is
replaced; records signed with it no longer verify against the new key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, true, func(ctx context.Context, app *cli.App) error {
			return app.Keygen(ctx)
		})
	},
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Print the device public key (base64, uncompressed P-256 point)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(ctx context.Context, app *cli.App) error {
			return app.PublicKey(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd, pubkeyCmd)
}
