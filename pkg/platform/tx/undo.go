package tx

import "context"

type undoKey struct{}

// UndoLog collects compensating actions for in-memory stores. The in-memory
// transaction runner replays them in reverse when the transaction body fails,
// giving memory stores the same all-or-nothing behaviour as a SQL rollback.
type UndoLog struct {
	steps []func()
}

// WithUndoLog binds log to ctx.
func WithUndoLog(ctx context.Context, log *UndoLog) context.Context {
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, undoKey{}, log)
}

// OnRollback registers fn to run if the surrounding transaction fails.
// Outside a transaction it is a no-op.
func OnRollback(ctx context.Context, fn func()) {
	if log, ok := ctx.Value(undoKey{}).(*UndoLog); ok {
		log.steps = append(log.steps, fn)
	}
}

// Rollback runs registered steps newest first and clears the log.
func (l *UndoLog) Rollback() {
	for i := len(l.steps) - 1; i >= 0; i-- {
		l.steps[i]()
	}
	l.steps = nil
}

// Len returns the number of pending compensations.
func (l *UndoLog) Len() int {
	return len(l.steps)
}
