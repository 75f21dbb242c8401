package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// PostgresStore keeps assessor lists as (assessor, position) rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, assessor domain.ActorID, donationID domain.DonationID) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO assessor_assignments (assessor_id, position, donation_id)
		SELECT $1, COALESCE(MAX(position) + 1, 0), $2
		FROM assessor_assignments WHERE assessor_id = $1
	`, uuid.UUID(assessor), int64(donationID))
	if err != nil {
		return fmt.Errorf("append assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) At(ctx context.Context, assessor domain.ActorID, index uint64) (domain.DonationID, error) {
	if index > uint64(1<<31-1) {
		return 0, sentinel.ErrNotFound
	}
	var id int64
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT donation_id FROM assessor_assignments
		WHERE assessor_id = $1 AND position = $2
	`, uuid.UUID(assessor), int64(index)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("assignment at: %w", err)
	}
	return domain.DonationID(id), nil
}

func (s *PostgresStore) List(ctx context.Context, assessor domain.ActorID) ([]domain.DonationID, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT donation_id FROM assessor_assignments
		WHERE assessor_id = $1 ORDER BY position
	`, uuid.UUID(assessor))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	out := []domain.DonationID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, domain.DonationID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}
