package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

func TestNewDonation(t *testing.T) {
	now := time.Now()
	donor, charity := domain.NewActorID(), domain.NewActorID()

	d, err := NewDonation(donor, charity, CategoryRV, " MinnieWinnie ", now)
	require.NoError(t, err)
	assert.Equal(t, StatusDonated, d.Status)
	assert.Equal(t, "MinnieWinnie", d.Description)
	assert.True(t, d.AssessorID.IsNil())
	assert.True(t, d.SaleValue.IsZero())

	_, err = NewDonation(donor, charity, Category(7), "x", now)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))

	_, err = NewDonation(donor, charity, CategoryOther, "   ", now)
	assert.Equal(t, dErrors.CodeValidation, dErrors.CodeOf(err))
}

func TestDonationLifecycle(t *testing.T) {
	now := time.Now()
	assessor := domain.NewActorID()
	d, err := NewDonation(domain.NewActorID(), domain.NewActorID(), CategoryVehicle, "ToyotaSupra", now)
	require.NoError(t, err)

	assert.Equal(t, dErrors.CodeWrongDonationState, dErrors.CodeOf(d.CanStartAuction()))

	require.NoError(t, d.CanAssign())
	d.ApplyAssignment(assessor, now)
	assert.True(t, d.IsAssessedBy(assessor))
	assert.Equal(t, dErrors.CodeAlreadyAssigned, dErrors.CodeOf(d.CanAssign()))
	assert.Equal(t, dErrors.CodeWrongDonationState, dErrors.CodeOf(d.CanSettle()))

	require.NoError(t, d.CanStartAuction())
	d.ApplyAuctionStart(now)
	assert.Equal(t, StatusAuctioning, d.Status)
	assert.Equal(t, dErrors.CodeAlreadyAssigned, dErrors.CodeOf(d.CanAssign()))

	require.NoError(t, d.CanSettle())
	d.ApplySettlement(domain.Amount(50_000_000), now)
	assert.Equal(t, StatusSold, d.Status)
	assert.Equal(t, domain.Amount(50_000_000), d.SaleValue)
	assert.True(t, d.Status.IsTerminal())
	assert.Equal(t, dErrors.CodeWrongDonationState, dErrors.CodeOf(d.CanSettle()))
}

func TestSettlementWithoutBidsIsUnsold(t *testing.T) {
	d := &Donation{Status: StatusAuctioning}
	d.ApplySettlement(0, time.Now())
	assert.Equal(t, StatusUnsold, d.Status)
	assert.True(t, d.SaleValue.IsZero())
}
