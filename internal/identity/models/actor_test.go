package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

func validProfile() Profile {
	return Profile{Name: "Big Sisters", ContactEmail: "b@hotmail", PhysicalAddress: "123 Bay St"}
}

func TestNewActor(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := domain.NewActorID()

	t.Run("trims and stores profile", func(t *testing.T) {
		p := validProfile()
		p.Name = "  Big Sisters "
		a, err := NewActor(id, RoleCharity, p, now)
		require.NoError(t, err)
		assert.Equal(t, "Big Sisters", a.Name)
		assert.True(t, a.Has(RoleCharity))
		assert.False(t, a.Has(RoleDonor))
		assert.Equal(t, now, a.RegisteredAt)
	})

	tests := []struct {
		name    string
		id      domain.ActorID
		role    Role
		mutate  func(*Profile)
		wantErr dErrors.Code
	}{
		{"nil id", domain.ActorID{}, RoleDonor, nil, dErrors.CodeInvalidInput},
		{"unregistered role", id, RoleUnregistered, nil, dErrors.CodeInvariantViolation},
		{"out of range role", id, Role(9), nil, dErrors.CodeInvariantViolation},
		{"empty name", id, RoleDonor, func(p *Profile) { p.Name = " " }, dErrors.CodeValidation},
		{"long name", id, RoleDonor, func(p *Profile) { p.Name = strings.Repeat("n", 129) }, dErrors.CodeValidation},
		{"missing email", id, RoleDonor, func(p *Profile) { p.ContactEmail = "" }, dErrors.CodeValidation},
		{"email without at", id, RoleDonor, func(p *Profile) { p.ContactEmail = "nobody" }, dErrors.CodeValidation},
		{"email without host", id, RoleDonor, func(p *Profile) { p.ContactEmail = "a@" }, dErrors.CodeValidation},
		{"missing address", id, RoleDonor, func(p *Profile) { p.PhysicalAddress = "" }, dErrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			_, err := NewActor(tt.id, tt.role, p, now)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, dErrors.CodeOf(err))
		})
	}
}

func TestRoleNames(t *testing.T) {
	for _, r := range []Role{RoleDonor, RoleCharity, RoleAuctioneer, RoleBidder} {
		parsed, ok := ParseRole(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, parsed)
	}
	_, ok := ParseRole("unregistered")
	assert.False(t, ok)
}
