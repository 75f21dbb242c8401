//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"givekindly/internal/platform/postgres"
)

// PostgresContainer wraps a testcontainers Postgres instance with the ledger
// schema applied. DB uses lib/pq like production; admin work goes through pgx.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres and migrates the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("givekindly"),
		tcpostgres.WithUsername("givekindly"),
		tcpostgres.WithPassword("givekindly"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to migrate schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the named tables and resets the auction slot row.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	conn, err := pgx.Connect(ctx, p.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if len(tables) > 0 {
		quoted := make([]string, len(tables))
		for i, table := range tables {
			quoted[i] = pgx.Identifier{table}.Sanitize()
		}
		if _, err := conn.Exec(ctx, "TRUNCATE "+strings.Join(quoted, ", ")+" CASCADE"); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	_, err = conn.Exec(ctx, `
		INSERT INTO auction_slot (id, state, updated_at) VALUES (1, 'idle', now())
		ON CONFLICT (id) DO UPDATE SET state = 'idle', donation_id = NULL, highest_bid = 0,
			highest_bidder = NULL, bid_count = 0, started_at = NULL, updated_at = now()`)
	if err != nil {
		return fmt.Errorf("reset auction slot: %w", err)
	}
	return nil
}

// LedgerTables lists every ledger table in dependency order.
var LedgerTables = []string{
	"outbox", "audit_events", "payouts", "escrow_balances",
	"assessor_assignments", "donations", "actors",
}
