package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/actionkeeper/internal/client/cli"
	"github.com/dmitrijs2005/actionkeeper/internal/client/config"
	"github.com/dmitrijs2005/actionkeeper/internal/client/keyvault"
	"github.com/dmitrijs2005/actionkeeper/internal/client/services"
	"github.com/dmitrijs2005/actionkeeper/internal/client/store"
	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	flagDB     string
	flagStore  string
	flagKey    string
	flagLevel  string

	cfg    *config.Config
	logger logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "actionkeeper",
	Short: "Offline capture of signed, ledgered action records",
	Long: `actionkeeper records claims of real-world action on this device.
Each action is canonicalised, hashed, signed with the device key and
appended to a local append-only ledger whose state hash is checkpointed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, c)
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = logging.New(os.Stderr, c.LogLevel)
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file (.json, .yaml)")
	pf.StringVar(&flagDB, "db", "", "path of the local database")
	pf.StringVar(&flagStore, "key-store", "", `where the sealed device key lives: "file" or "db"`)
	pf.StringVar(&flagKey, "key-path", "", "path of the device key file")
	pf.StringVar(&flagLevel, "log-level", "", "debug, info, warn or error")
}

// applyFlags overlays only the flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("db") {
		c.DatabasePath = flagDB
	}
	if f.Changed("key-store") {
		c.KeyStore = flagStore
	}
	if f.Changed("key-path") {
		c.KeyPath = flagKey
	}
	if f.Changed("log-level") {
		c.LogLevel = flagLevel
	}
}

// session is everything a subcommand needs, opened from cfg.
type session struct {
	store *store.Store
	app   *cli.App
}

func (s *session) Close() error { return s.store.Close() }

// openSession opens the store and the key vault. needSecret asks for the
// key passphrase on the terminal when it is not configured.
func openSession(ctx context.Context, needSecret bool) (*session, error) {
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	passphrase := []byte(cfg.Passphrase)
	if needSecret && len(passphrase) == 0 && cli.StdinIsTerminal() {
		if passphrase, err = cli.GetPassword(os.Stderr, "Key passphrase: "); err != nil {
			_ = st.Close()
			return nil, err
		}
	}
	defer common.WipeByteArray(passphrase)

	var ks keyvault.KeyStore
	switch cfg.KeyStore {
	case config.KeyStoreDB:
		ks = keyvault.NewMetadataKeyStore(st.Repos.Metadata(st.DB))
	default:
		ks = keyvault.NewFileKeyStore(cfg.KeyPath)
	}
	vault := keyvault.New(ks, passphrase)

	capture := services.NewCaptureService(st.DB, st.Repos, vault, logger, nil)
	app := cli.NewApp(capture, vault, st.Repos.Metadata(st.DB), logger, os.Stdin, os.Stdout)

	logger.Debug(ctx, "session opened", "db", cfg.DatabasePath, "key_store", cfg.KeyStore)
	return &session{store: st, app: app}, nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(cmd *cobra.Command, needSecret bool, fn func(ctx context.Context, app *cli.App) error) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, needSecret)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s.app)
}
