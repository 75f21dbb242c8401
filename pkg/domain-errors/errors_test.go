package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost coded error", func(t *testing.T) {
		err := New(CodeSlotBusy, "an auction is already running")
		assert.True(t, HasCode(err, CodeSlotBusy))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("sees through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("start auction: %w", New(CodeBidTooLow, "too low"))
		assert.True(t, HasCode(err, CodeBidTooLow))
	})

	t.Run("nil and plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(nil, CodeInternal))
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load donation")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load donation: connection reset", err.Error())
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeWrongRole, http.StatusForbidden},
		{CodeNotOwner, http.StatusForbidden},
		{CodeNotAssignedAssessor, http.StatusForbidden},
		{CodeAlreadyRegistered, http.StatusConflict},
		{CodeSlotBusy, http.StatusConflict},
		{CodeNoActiveAuction, http.StatusConflict},
		{CodeBidTooLow, http.StatusUnprocessableEntity},
		{CodeUnknownCharity, http.StatusNotFound},
		{CodeUnknownDonation, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeTimeout, http.StatusGatewayTimeout},
		{Code("something_new"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, ToHTTPStatus(tt.code))
		})
	}
}
