package app

import (
	"context"
	"database/sql"
	"time"

	transferservice "medtransit/internal/transfer/service"
	transferstore "medtransit/internal/transfer/store"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/tx"
)

const defaultTransferTxTimeout = 5 * time.Second

// transferPostgresTx runs fn inside one database transaction. Store calls
// join it through the ctx handed to fn.
type transferPostgresTx struct {
	db      *sql.DB
	store   *transferstore.Postgres
	timeout time.Duration
}

func newTransferPostgresTx(db *sql.DB) *transferPostgresTx {
	return &transferPostgresTx{db: db, store: transferstore.NewPostgres(db), timeout: defaultTransferTxTimeout}
}

func (t *transferPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store transferservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return tx.Run(ctx, t.db, func(ctx context.Context) error {
		return fn(ctx, t.store)
	})
}
