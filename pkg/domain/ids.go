package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "givekindly/pkg/domain-errors"
)

// ActorID is the opaque handle of a caller identity. Identities are issued
// outside the ledger; the ledger only records which role an ActorID holds.
type ActorID uuid.UUID

// ParseActorID constructs an ActorID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, not valid UTF-8,
// not a UUID, or the nil UUID.
func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID(s, "actor id")
	if err != nil {
		return ActorID{}, err
	}
	return ActorID(u), nil
}

// String returns the canonical UUID text.
func (a ActorID) String() string {
	return uuid.UUID(a).String()
}

// IsNil reports whether the id is the zero value.
func (a ActorID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

// NewActorID issues a fresh random ActorID. Used by tests and tooling; the
// ledger never mints identities itself.
func NewActorID() ActorID {
	return ActorID(uuid.New())
}

func (a ActorID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActorID) UnmarshalText(b []byte) error {
	parsed, err := ParseActorID(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must be valid UTF-8")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// DonationID is the dense, zero-based sequence number of a donation.
type DonationID uint64

// ParseDonationID parses a decimal donation id.
func ParseDonationID(s string) (DonationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "donation id cannot be empty")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid donation id")
	}
	return DonationID(n), nil
}

func (d DonationID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}
