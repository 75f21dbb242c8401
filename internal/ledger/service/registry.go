package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	idmodels "givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
	"givekindly/pkg/platform/audit"
	"givekindly/pkg/platform/sentinel"
	"givekindly/pkg/requestcontext"
)

func (s *Service) RegisterDonor(ctx context.Context, caller domain.ActorID, profile idmodels.Profile) (*idmodels.Actor, error) {
	return s.Register(ctx, caller, idmodels.RoleDonor, profile)
}

func (s *Service) RegisterCharity(ctx context.Context, caller domain.ActorID, profile idmodels.Profile) (*idmodels.Actor, error) {
	return s.Register(ctx, caller, idmodels.RoleCharity, profile)
}

func (s *Service) RegisterAuctioneer(ctx context.Context, caller domain.ActorID, profile idmodels.Profile) (*idmodels.Actor, error) {
	return s.Register(ctx, caller, idmodels.RoleAuctioneer, profile)
}

func (s *Service) RegisterBidder(ctx context.Context, caller domain.ActorID, profile idmodels.Profile) (*idmodels.Actor, error) {
	return s.Register(ctx, caller, idmodels.RoleBidder, profile)
}

// Register gives caller its one role. A caller that already holds any role
// is rejected with already_registered.
func (s *Service) Register(ctx context.Context, caller domain.ActorID, role idmodels.Role, profile idmodels.Profile) (actor *idmodels.Actor, err error) {
	ctx, done := s.observe(ctx, "register", caller, attribute.String("ledger.role", role.String()))
	defer done(&err)

	actor, err = idmodels.NewActor(caller, role, profile, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.actors.CreateIfUnregistered(ctx, actor); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeAlreadyRegistered, "caller already holds a role")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register actor")
		}
		return s.emit(ctx, audit.EventActorRegistered, audit.Event{
			ActorID: caller,
			Subject: actorSubject(caller),
			Reason:  role.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ActorsRegistered.WithLabelValues(role.String()).Inc()
	}
	s.logger.InfoContext(ctx, "actor registered",
		"actor_id", caller,
		"role", role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return actor, nil
}

// Actor returns a registered identity.
func (s *Service) Actor(ctx context.Context, id domain.ActorID) (*idmodels.Actor, error) {
	var actor *idmodels.Actor
	err := s.tx.View(ctx, func(ctx context.Context) error {
		found, err := s.actors.FindByID(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "actor is not registered")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load actor")
		}
		actor = found
		return nil
	})
	return actor, err
}

// NumActorsRegistered counts every identity that registered successfully.
func (s *Service) NumActorsRegistered(ctx context.Context) (int, error) {
	var n int
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.actors.Count(ctx)
		return internal(err, "failed to count actors")
	})
	return n, err
}

// AuditTrail returns the audit events an actor took part in. Callers may
// only read their own trail.
func (s *Service) AuditTrail(ctx context.Context, caller, actorID domain.ActorID) ([]audit.Event, error) {
	if caller != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "callers may only read their own audit trail")
	}
	if s.auditPublisher == nil {
		return []audit.Event{}, nil
	}
	var events []audit.Event
	err := s.tx.View(ctx, func(ctx context.Context) error {
		var err error
		events, err = s.auditPublisher.List(ctx, actorID)
		return internal(err, "failed to list audit events")
	})
	if events == nil {
		events = []audit.Event{}
	}
	return events, err
}
