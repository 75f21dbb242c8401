package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"givekindly/internal/auction/models"
	"givekindly/pkg/domain"
	txcontext "givekindly/pkg/platform/tx"
)

// PostgresStore keeps the slot in the single-row auction_slot table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context) (*models.Slot, error) {
	var (
		slot       models.Slot
		state      string
		donationID sql.NullInt64
		highest    uint64
		bidder     *uuid.UUID
		startedAt  sql.NullTime
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT state, donation_id, highest_bid, highest_bidder, bid_count, started_at, updated_at
		FROM auction_slot WHERE id = 1
	`).Scan(&state, &donationID, &highest, &bidder, &slot.BidCount, &startedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load auction slot: %w", err)
	}
	slot.State = models.State(state)
	slot.HighestBid = domain.Amount(highest)
	if donationID.Valid {
		slot.DonationID = domain.DonationID(donationID.Int64)
	}
	if bidder != nil {
		slot.HighestBidder = domain.ActorID(*bidder)
	}
	if startedAt.Valid {
		slot.StartedAt = startedAt.Time
	}
	return &slot, nil
}

func (s *PostgresStore) Save(ctx context.Context, slot *models.Slot) error {
	var (
		donationID any
		bidder     any
		startedAt  any
	)
	if slot.IsAuctioning() {
		donationID = int64(slot.DonationID)
		startedAt = slot.StartedAt
	}
	if slot.HasBid() {
		bidder = uuid.UUID(slot.HighestBidder)
	}
	updatedAt := slot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE auction_slot
		SET state = $1, donation_id = $2, highest_bid = $3, highest_bidder = $4,
			bid_count = $5, started_at = $6, updated_at = $7
		WHERE id = 1
	`, string(slot.State), donationID, slot.HighestBid.String(), bidder, slot.BidCount, startedAt, updatedAt)
	if err != nil {
		return fmt.Errorf("save auction slot: %w", err)
	}
	return nil
}
