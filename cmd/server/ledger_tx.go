package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"givekindly/internal/ledger/service"
	dErrors "givekindly/pkg/domain-errors"
	txcontext "givekindly/pkg/platform/tx"
)

// ledgerLockKey is the advisory lock every ledger mutation takes. Holding it
// for the whole transaction serializes mutations across all server instances.
const ledgerLockKey int64 = 0x6769766b // "givk"

// ledgerPostgresTx runs ledger operations in Postgres transactions. Writers
// use READ COMMITTED and take the advisory lock first, so every statement
// after the lock sees all previously committed mutations.
type ledgerPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

var _ service.StoreTx = (*ledgerPostgresTx)(nil)

func newLedgerPostgresTx(db *sql.DB, timeout time.Duration) *ledgerPostgresTx {
	return &ledgerPostgresTx{db: db, timeout: timeout}
}

func (t *ledgerPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, true, fn)
}

func (t *ledgerPostgresTx) View(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, false, fn)
}

func (t *ledgerPostgresTx) run(ctx context.Context, opts *sql.TxOptions, lock bool, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = service.DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, opts)
	if err != nil {
		return t.classify(ctx, err, "begin ledger transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if lock {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
			return t.classify(ctx, err, "acquire ledger lock")
		}
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return t.classify(ctx, err, "commit ledger transaction")
	}
	return nil
}

// classify reports deadline and cancellation as timeout and everything else
// as internal.
func (t *ledgerPostgresTx) classify(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": "+ctx.Err().Error())
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("%s failed", msg))
}
