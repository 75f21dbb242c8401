package domain

import (
	"math"
	"strconv"

	dErrors "givekindly/pkg/domain-errors"
)

// Amount is a value in the smallest currency unit. Integer arithmetic only.
type Amount uint64

// Add returns a+b, failing instead of wrapping on overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if uint64(b) > math.MaxUint64-uint64(a) {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "amount overflow")
	}
	return a + b, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}
