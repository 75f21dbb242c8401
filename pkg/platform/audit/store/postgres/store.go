package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"givekindly/pkg/domain"
	audit "givekindly/pkg/platform/audit"
	txcontext "givekindly/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Each event lands in audit_events for querying and in outbox for the Kafka
// relay, both through the caller's transaction when one is bound to ctx.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Timestamp    string `json:"timestamp"`
	ActorID      string `json:"actor_id,omitempty"`
	Action       string `json:"action"`
	Subject      string `json:"subject,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Reason       string `json:"reason,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
}

// Append writes an audit event to audit_events and the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	// The action's category is authoritative.
	event.Category = audit.AuditEvent(event.Action).Category()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload := outboxPayload{
		ID:        eventID.String(),
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    event.Action,
		Subject:   event.Subject,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}
	if !event.Counterparty.IsNil() {
		payload.Counterparty = event.Counterparty.String()
	}
	if !event.Amount.IsZero() {
		payload.Amount = event.Amount.String()
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	exec := txcontext.ExecutorFrom(ctx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, timestamp, actor_id, action, subject,
			counterparty, amount, reason, request_id, client_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		eventID,
		string(event.Category),
		event.Timestamp,
		nullableActor(event.ActorID),
		event.Action,
		event.Subject,
		nullableActor(event.Counterparty),
		event.Amount.String(),
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	aggregateType := "ledger"
	aggregateID := eventID.String()
	if !event.ActorID.IsNil() {
		aggregateType = "actor"
		aggregateID = event.ActorID.String()
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, eventID, aggregateType, aggregateID, event.Action, payloadBytes, event.Timestamp)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByActor returns events where actorID acted or was the counterparty, oldest first.
func (s *Store) ListByActor(ctx context.Context, actorID domain.ActorID) ([]audit.Event, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT category, timestamp, actor_id, action, subject,
			   counterparty, amount, reason, request_id, client_ip, user_agent
		FROM audit_events
		WHERE actor_id = $1 OR counterparty = $1
		ORDER BY timestamp ASC
	`, uuid.UUID(actorID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event        audit.Event
			category     string
			actor        *uuid.UUID
			counterparty *uuid.UUID
			amount       uint64
		)
		if err := rows.Scan(&category, &event.Timestamp, &actor, &event.Action, &event.Subject,
			&counterparty, &amount, &event.Reason, &event.RequestID, &event.ClientIP, &event.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Amount = domain.Amount(amount)
		if actor != nil {
			event.ActorID = domain.ActorID(*actor)
		}
		if counterparty != nil {
			event.Counterparty = domain.ActorID(*counterparty)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullableActor(id domain.ActorID) *uuid.UUID {
	if id.IsNil() {
		return nil
	}
	u := uuid.UUID(id)
	return &u
}
