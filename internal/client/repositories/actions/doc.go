// Package actions provides the ActionStore: the device-local persistence of
// full action records, keyed by id.
//
// Records are upserted whole. The capture service writes each record twice:
// once with actionHash and signature attached, and once more after the
// ledger append with ledgerStateHash filled in. Metrics and media are stored
// as JSON text columns.
//
//	repo := actions.NewSQLiteRepository(db) // or a *sql.Tx
//	_ = repo.CreateOrUpdate(ctx, rec)
//	all, _ := repo.GetAll(ctx)
package actions
