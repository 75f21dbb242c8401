package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"givekindly/internal/identity/models"
	"givekindly/pkg/domain"
	"givekindly/pkg/platform/sentinel"
	txcontext "givekindly/pkg/platform/tx"
)

type ActorStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ActorStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestActorStoreSuite(t *testing.T) {
	suite.Run(t, new(ActorStoreSuite))
}

func (s *ActorStoreSuite) newActor(role models.Role) *models.Actor {
	a, err := models.NewActor(domain.NewActorID(), role, models.Profile{
		Name: "Ada", ContactEmail: "a@gmail", PhysicalAddress: "1 Main St",
	}, time.Now())
	s.Require().NoError(err)
	return a
}

func (s *ActorStoreSuite) TestRegistration() {
	s.Run("creates and finds actor", func() {
		actor := s.newActor(models.RoleDonor)
		s.Require().NoError(s.store.CreateIfUnregistered(s.ctx, actor))

		found, err := s.store.FindByID(s.ctx, actor.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleDonor, found.Role)

		role, err := s.store.RoleOf(s.ctx, actor.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleDonor, role)
	})

	s.Run("second registration for the same identity is rejected", func() {
		actor := s.newActor(models.RoleCharity)
		s.Require().NoError(s.store.CreateIfUnregistered(s.ctx, actor))

		again := *actor
		again.Role = models.RoleBidder
		s.ErrorIs(s.store.CreateIfUnregistered(s.ctx, &again), sentinel.ErrAlreadyUsed)

		role, err := s.store.RoleOf(s.ctx, actor.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleCharity, role)
	})

	s.Run("unknown identities are unregistered", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewActorID())
		s.ErrorIs(err, sentinel.ErrNotFound)

		role, err := s.store.RoleOf(s.ctx, domain.NewActorID())
		s.Require().NoError(err)
		s.Equal(models.RoleUnregistered, role)
	})
}

func (s *ActorStoreSuite) TestCountAndRollback() {
	s.Require().NoError(s.store.CreateIfUnregistered(s.ctx, s.newActor(models.RoleDonor)))

	undo := &txcontext.UndoLog{}
	txCtx := txcontext.WithUndoLog(s.ctx, undo)
	s.Require().NoError(s.store.CreateIfUnregistered(txCtx, s.newActor(models.RoleBidder)))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	undo.Rollback()
	n, err = s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}
