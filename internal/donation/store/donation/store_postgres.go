package donation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"givekindly/internal/donation/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// PostgresStore persists donations. Sequential IDs rely on the ledger
// transaction lock: the next ID is derived from the row count.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Donation) (domain.DonationID, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	var next uint64
	if err := exec.QueryRowContext(ctx, `SELECT count(*) FROM donations`).Scan(&next); err != nil {
		return 0, fmt.Errorf("next donation id: %w", err)
	}
	d.ID = domain.DonationID(next)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO donations (id, donor_id, charity_id, category, description, status,
			assessor_id, sale_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, int64(d.ID), uuid.UUID(d.DonorID), uuid.UUID(d.CharityID), int(d.Category), d.Description,
		string(d.Status), nullableActor(d.AssessorID), d.SaleValue.String(), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert donation: %w", err)
	}
	return d.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.DonationID) (*models.Donation, error) {
	var (
		d         models.Donation
		rawID     int64
		donor     uuid.UUID
		charity   uuid.UUID
		category  int
		status    string
		assessor  *uuid.UUID
		saleValue uint64
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, donor_id, charity_id, category, description, status,
			assessor_id, sale_value, created_at, updated_at
		FROM donations WHERE id = $1
	`, int64(id)).Scan(&rawID, &donor, &charity, &category, &d.Description, &status,
		&assessor, &saleValue, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find donation: %w", err)
	}
	d.ID = domain.DonationID(rawID)
	d.DonorID = domain.ActorID(donor)
	d.CharityID = domain.ActorID(charity)
	d.Category = models.Category(category)
	d.Status = models.Status(status)
	d.SaleValue = domain.Amount(saleValue)
	if assessor != nil {
		d.AssessorID = domain.ActorID(*assessor)
	}
	return &d, nil
}

func (s *PostgresStore) Update(ctx context.Context, d *models.Donation) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE donations
		SET status = $2, assessor_id = $3, sale_value = $4, updated_at = $5
		WHERE id = $1
	`, int64(d.ID), string(d.Status), nullableActor(d.AssessorID), d.SaleValue.String(), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `SELECT count(*) FROM donations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return n, nil
}

func nullableActor(id domain.ActorID) *uuid.UUID {
	if id.IsNil() {
		return nil
	}
	u := uuid.UUID(id)
	return &u
}
