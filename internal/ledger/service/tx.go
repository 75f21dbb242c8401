package service

import (
	"context"
	"sync"
	"time"

	dErrors "givekindly/pkg/domain-errors"
	txcontext "givekindly/pkg/platform/tx"
)

// StoreTx is the ledger's serialization point. RunInTx applies fn as one
// indivisible step: no two RunInTx bodies interleave, and an error leaves no
// trace in any store. View runs read-only work against a consistent state.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultTxTimeout bounds how long an operation may wait for and hold the ledger.
const DefaultTxTimeout = 5 * time.Second

// InMemoryTx serializes writers with one process-wide lock. Memory stores
// register compensations on the undo log bound to ctx, which is replayed
// when fn fails.
type InMemoryTx struct {
	mu      sync.RWMutex
	timeout time.Duration
}

// NewInMemoryTx returns a StoreTx for the in-memory stores.
func NewInMemoryTx(timeout time.Duration) *InMemoryTx {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &InMemoryTx{timeout: timeout}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()
	if err := t.acquire(ctx, t.mu.Lock, t.mu.Unlock); err != nil {
		return err
	}
	defer t.mu.Unlock()

	undo := &txcontext.UndoLog{}
	defer func() {
		if p := recover(); p != nil {
			undo.Rollback()
			panic(p)
		}
	}()
	if err := fn(txcontext.WithUndoLog(ctx, undo)); err != nil {
		undo.Rollback()
		return err
	}
	return nil
}

func (t *InMemoryTx) View(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()
	if err := t.acquire(ctx, t.mu.RLock, t.mu.RUnlock); err != nil {
		return err
	}
	defer t.mu.RUnlock()
	return fn(ctx)
}

func (t *InMemoryTx) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.timeout)
}

// acquire takes the lock unless ctx ends first. A lock obtained after the
// caller gave up is released by the waiting goroutine.
func (t *InMemoryTx) acquire(ctx context.Context, lock, unlock func()) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	acquired := make(chan struct{})
	go func() {
		lock()
		close(acquired)
	}()
	select {
	case <-acquired:
		return nil
	case <-ctx.Done():
		go func() {
			<-acquired
			unlock()
		}()
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for the ledger")
	}
}
