package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/actionkeeper/internal/common"
	"github.com/dmitrijs2005/actionkeeper/internal/cryptox"
)

// getStatus shows a short fingerprint of the device key, or that none exists.
func (a *App) getStatus(ctx context.Context) string {
	pub, err := a.vault.ExportPublicKey(ctx)
	switch {
	case errors.Is(err, common.ErrKeyNotFound):
		return "(no key)"
	case err != nil:
		return "(key error)"
	default:
		return fmt.Sprintf("(key %s)", cryptox.Sha256Hex(pub)[:8])
	}
}

// Shell runs the interactive loop until the user exits or ctx is done.
func (a *App) Shell(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to actionkeeper (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader, a.out)
}
