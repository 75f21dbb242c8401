package payout

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"givekindly/internal/escrow"
	"givekindly/internal/escrow/models"
	"givekindly/pkg/domain"
	txcontext "givekindly/pkg/platform/tx"
)

var _ escrow.Disburser = (*PostgresJournal)(nil)

// PostgresJournal records payouts in the payouts table inside the ledger
// transaction. Downstream settlement reads the journal and the audit outbox.
type PostgresJournal struct {
	db *sql.DB
}

func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

func (j *PostgresJournal) Disburse(ctx context.Context, payout models.Payout) error {
	id := uuid.New()
	if payout.ID != "" {
		parsed, err := uuid.Parse(payout.ID)
		if err != nil {
			return fmt.Errorf("payout id: %w", err)
		}
		id = parsed
	}
	_, err := txcontext.ExecutorFrom(ctx, j.db).ExecContext(ctx, `
		INSERT INTO payouts (id, kind, holder_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, string(payout.Kind), uuid.UUID(payout.To), payout.Amount.String(), payout.Reason, payout.CreatedAt)
	if err != nil {
		return fmt.Errorf("record payout: %w", err)
	}
	return nil
}

func (j *PostgresJournal) ListByActor(ctx context.Context, actor domain.ActorID) ([]models.Payout, error) {
	rows, err := txcontext.ExecutorFrom(ctx, j.db).QueryContext(ctx, `
		SELECT id, kind, holder_id, amount, reason, created_at
		FROM payouts WHERE holder_id = $1 ORDER BY created_at, id
	`, uuid.UUID(actor))
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	out := []models.Payout{}
	for rows.Next() {
		var (
			p      models.Payout
			id     uuid.UUID
			kind   string
			holder uuid.UUID
			amount uint64
		)
		if err := rows.Scan(&id, &kind, &holder, &amount, &p.Reason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		p.ID = id.String()
		p.Kind = models.AccountKind(kind)
		p.To = domain.ActorID(holder)
		p.Amount = domain.Amount(amount)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}
	return out, nil
}
