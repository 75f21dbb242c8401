package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"givekindly/pkg/domain"
	dErrors "givekindly/pkg/domain-errors"
)

// Role is the single role an identity holds in the ledger.
type Role int

const (
	RoleUnregistered Role = iota
	RoleDonor
	RoleCharity
	RoleAuctioneer
	RoleBidder
)

func (r Role) String() string {
	switch r {
	case RoleDonor:
		return "donor"
	case RoleCharity:
		return "charity"
	case RoleAuctioneer:
		return "auctioneer"
	case RoleBidder:
		return "bidder"
	default:
		return "unregistered"
	}
}

// ParseRole maps a role name back to a Role.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleDonor, RoleCharity, RoleAuctioneer, RoleBidder} {
		if r.String() == s {
			return r, true
		}
	}
	return RoleUnregistered, false
}

const (
	maxNameLength    = 128
	maxEmailLength   = 254
	maxAddressLength = 512
)

// Profile is the registration data an identity supplies.
type Profile struct {
	Name            string
	ContactEmail    string
	PhysicalAddress string
}

// Actor is a registered identity.
//
// Invariants:
//   - Role is never RoleUnregistered once stored
//   - Role never changes after registration
//   - Name, ContactEmail and PhysicalAddress are non-empty
type Actor struct {
	ID              domain.ActorID `json:"id"`
	Role            Role           `json:"-"`
	Name            string         `json:"name"`
	ContactEmail    string         `json:"contact_email"`
	PhysicalAddress string         `json:"physical_address"`
	RegisteredAt    time.Time      `json:"registered_at"`
}

// Has reports whether the actor holds role.
func (a *Actor) Has(role Role) bool {
	return a != nil && a.Role == role
}

// NewActor validates the profile and builds an actor holding role.
func NewActor(id domain.ActorID, role Role, profile Profile, now time.Time) (*Actor, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if role == RoleUnregistered || role > RoleBidder {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "actor must register with a concrete role")
	}
	p := Profile{
		Name:            strings.TrimSpace(profile.Name),
		ContactEmail:    strings.TrimSpace(profile.ContactEmail),
		PhysicalAddress: strings.TrimSpace(profile.PhysicalAddress),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Actor{
		ID:              id,
		Role:            role,
		Name:            p.Name,
		ContactEmail:    p.ContactEmail,
		PhysicalAddress: p.PhysicalAddress,
		RegisteredAt:    now,
	}, nil
}

func (p Profile) validate() error {
	switch {
	case p.Name == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	case utf8.RuneCountInString(p.Name) > maxNameLength:
		return dErrors.New(dErrors.CodeValidation, "name must be 128 characters or less")
	case p.ContactEmail == "":
		return dErrors.New(dErrors.CodeValidation, "contact email is required")
	case len(p.ContactEmail) > maxEmailLength:
		return dErrors.New(dErrors.CodeValidation, "contact email is too long")
	case p.PhysicalAddress == "":
		return dErrors.New(dErrors.CodeValidation, "physical address is required")
	case utf8.RuneCountInString(p.PhysicalAddress) > maxAddressLength:
		return dErrors.New(dErrors.CodeValidation, "physical address is too long")
	}
	// Bare hosts such as "a@gmail" are accepted.
	local, host, ok := strings.Cut(p.ContactEmail, "@")
	if !ok || local == "" || host == "" || strings.ContainsAny(p.ContactEmail, " \t") {
		return dErrors.New(dErrors.CodeValidation, "contact email is malformed")
	}
	return nil
}
