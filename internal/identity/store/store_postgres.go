package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresStore persists actors in the actors table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfUnregistered(ctx context.Context, actor *models.Actor) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO actors (id, role, name, contact_email, physical_address, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(actor.ID), int(actor.Role), actor.Name, actor.ContactEmail, actor.PhysicalAddress, actor.RegisteredAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert actor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ActorID) (*models.Actor, error) {
	var (
		actor models.Actor
		role  int
		raw   uuid.UUID
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, role, name, contact_email, physical_address, registered_at
		FROM actors WHERE id = $1
	`, uuid.UUID(id)).Scan(&raw, &role, &actor.Name, &actor.ContactEmail, &actor.PhysicalAddress, &actor.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find actor: %w", err)
	}
	actor.ID = domain.ActorID(raw)
	actor.Role = models.Role(role)
	return &actor, nil
}

func (s *PostgresStore) RoleOf(ctx context.Context, id domain.ActorID) (models.Role, error) {
	var role int
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT role FROM actors WHERE id = $1`, uuid.UUID(id)).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoleUnregistered, nil
	}
	if err != nil {
		return models.RoleUnregistered, fmt.Errorf("actor role: %w", err)
	}
	return models.Role(role), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `SELECT count(*) FROM actors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count actors: %w", err)
	}
	return n, nil
}
