package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	txcontext "givekindly/pkg/platform/tx"
)

// PostgresStore keeps escrow balances in escrow_balances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Credit(ctx context.Context, kind models.AccountKind, holder domain.ActorID, amount domain.Amount) (domain.Amount, error) {
	current, err := s.Balance(ctx, kind, holder)
	if err != nil {
		return 0, err
	}
	next, err := current.Add(amount)
	if err != nil {
		return current, err
	}
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO escrow_balances (kind, holder_id, amount, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, holder_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at
	`, string(kind), uuid.UUID(holder), next.String(), time.Now())
	if err != nil {
		return current, fmt.Errorf("credit escrow: %w", err)
	}
	return next, nil
}

func (s *PostgresStore) Balance(ctx context.Context, kind models.AccountKind, holder domain.ActorID) (domain.Amount, error) {
	var amount uint64
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT amount FROM escrow_balances WHERE kind = $1 AND holder_id = $2
	`, string(kind), uuid.UUID(holder)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("escrow balance: %w", err)
	}
	return domain.Amount(amount), nil
}

func (s *PostgresStore) Drain(ctx context.Context, kind models.AccountKind, holder domain.ActorID) (domain.Amount, error) {
	var amount uint64
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		DELETE FROM escrow_balances WHERE kind = $1 AND holder_id = $2
		RETURNING amount
	`, string(kind), uuid.UUID(holder)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("drain escrow: %w", err)
	}
	return domain.Amount(amount), nil
}

func (s *PostgresStore) Total(ctx context.Context, kind models.AccountKind) (domain.Amount, error) {
	var total uint64
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM escrow_balances WHERE kind = $1
	`, string(kind)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("escrow total: %w", err)
	}
	return domain.Amount(total), nil
}
