// Package service implements the charity auction ledger: identity registry,
// donation ledger, assessor assignments, the single auction slot and the
// escrow balances. Every mutation runs inside StoreTx.RunInTx.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	auctionmodels "givekindly/internal/auction/models"
	donationmodels "givekindly/internal/donation/models"
	escrowmodels "givekindly/internal/escrow/models"
	idmodels "givekindly/internal/identity/models"
	"givekindly/internal/ledger/metrics"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/platform/sentinel"
	"givekindly/pkg/requestcontext"
)

type ActorStore interface {
	CreateIfUnregistered(ctx context.Context, actor *idmodels.Actor) error
	FindByID(ctx context.Context, id domain.ActorID) (*idmodels.Actor, error)
	RoleOf(ctx context.Context, id domain.ActorID) (idmodels.Role, error)
	Count(ctx context.Context) (int, error)
}

type DonationStore interface {
	Create(ctx context.Context, d *donationmodels.Donation) (domain.DonationID, error)
	FindByID(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error)
	Update(ctx context.Context, d *donationmodels.Donation) error
	Count(ctx context.Context) (uint64, error)
}

type AssignmentStore interface {
	Append(ctx context.Context, assessor domain.ActorID, donationID domain.DonationID) error
	At(ctx context.Context, assessor domain.ActorID, index uint64) (domain.DonationID, error)
	List(ctx context.Context, assessor domain.ActorID) ([]domain.DonationID, error)
}

type SlotStore interface {
	Get(ctx context.Context) (*auctionmodels.Slot, error)
	Save(ctx context.Context, slot *auctionmodels.Slot) error
}

type EscrowStore interface {
	Credit(ctx context.Context, kind escrowmodels.AccountKind, holder domain.ActorID, amount domain.Amount) (domain.Amount, error)
	Balance(ctx context.Context, kind escrowmodels.AccountKind, holder domain.ActorID) (domain.Amount, error)
	Drain(ctx context.Context, kind escrowmodels.AccountKind, holder domain.ActorID) (domain.Amount, error)
}

// Stores groups the ledger's persistence ports.
type Stores struct {
	Actors      ActorStore
	Donations   DonationStore
	Assignments AssignmentStore
	Slot        SlotStore
	Escrow      EscrowStore
	Payouts     PayoutJournal
}

// Service orchestrates every ledger operation.
type Service struct {
	actors      ActorStore
	donations   DonationStore
	assignments AssignmentStore
	slot        SlotStore
	escrow      EscrowStore
	payouts     PayoutJournal
	tx          StoreTx

	logger            *slog.Logger
	auditPublisher    AuditPublisher
	metrics           *metrics.Metrics
	tracer            trace.Tracer
	strictWithdrawals bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithStrictWithdrawals makes a withdrawal of an empty balance fail with
// nothing_to_withdraw instead of succeeding with amount zero.
func WithStrictWithdrawals() Option {
	return func(s *Service) {
		s.strictWithdrawals = true
	}
}

// New constructs a Service.
func New(stores Stores, tx StoreTx, opts ...Option) (*Service, error) {
	if stores.Actors == nil || stores.Donations == nil || stores.Assignments == nil ||
		stores.Slot == nil || stores.Escrow == nil || stores.Payouts == nil {
		return nil, errors.New("ledger service requires every store")
	}
	if tx == nil {
		return nil, errors.New("ledger service requires a StoreTx")
	}
	s := &Service{
		actors:      stores.Actors,
		donations:   stores.Donations,
		assignments: stores.Assignments,
		slot:        stores.Slot,
		escrow:      stores.Escrow,
		payouts:     stores.Payouts,
		tx:          tx,
		logger:      slog.Default(),
		tracer:      otel.Tracer("givekindly/internal/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// observe opens a span for op and returns the finisher that records the
// outcome on the span and in metrics.
func (s *Service) observe(ctx context.Context, op string, caller domain.ActorID, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	attrs = append(attrs, attribute.String("ledger.caller", caller.String()))
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		outcome := "ok"
		if err := *errp; err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, outcome, time.Since(start))
		}
	}
}

// requireRole rejects callers that do not hold role.
func (s *Service) requireRole(ctx context.Context, caller domain.ActorID, role idmodels.Role) error {
	got, err := s.actors.RoleOf(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve caller role")
	}
	if got != role {
		return dErrors.New(dErrors.CodeWrongRole, fmt.Sprintf("caller must be a registered %s", role))
	}
	return nil
}

// loadDonation maps a missing donation onto unknown_donation.
func (s *Service) loadDonation(ctx context.Context, id domain.DonationID) (*donationmodels.Donation, error) {
	d, err := s.donations.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnknownDonation, fmt.Sprintf("donation %s does not exist", id))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	return d, nil
}

func (s *Service) loadSlot(ctx context.Context) (*auctionmodels.Slot, error) {
	slot, err := s.slot.Get(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load auction slot")
	}
	return slot, nil
}

// emit writes an audit event inside the current transaction. Without a
// publisher the event is only logged.
func (s *Service) emit(ctx context.Context, event audit.AuditEvent, base audit.Event) error {
	base.Action = string(event)
	if s.auditPublisher == nil {
		s.logger.InfoContext(ctx, string(event),
			"log_type", "audit",
			"actor_id", base.ActorID,
			"subject", base.Subject,
			"amount", base.Amount,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, base); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// internal passes coded errors through and wraps everything else as internal_error.
func internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func donationSubject(id domain.DonationID) string {
	return "donation:" + id.String()
}

func actorSubject(id domain.ActorID) string {
	return "actor:" + id.String()
}
