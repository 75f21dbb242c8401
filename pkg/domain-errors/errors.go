// Package domainerrors carries coded errors across the service boundary.
//
// Services return *Error values with a Code; transports translate the Code into
// a status (see ToHTTPStatus) without inspecting messages. Store and
// infrastructure layers should return sentinel facts instead (pkg/platform/sentinel)
// and let services pick the code.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure. Codes are stable API values.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
)

// Ledger codes. Every ledger rejection is all-or-nothing: the operation that
// returns one of these committed nothing.
const (
	// Authorization
	CodeWrongRole           Code = "wrong_role"
	CodeNotOwner            Code = "not_owner"
	CodeNotAssignedAssessor Code = "not_assigned_assessor"

	// State
	CodeAlreadyRegistered  Code = "already_registered"
	CodeAlreadyAssigned    Code = "already_assigned"
	CodeWrongDonationState Code = "wrong_donation_state"
	CodeSlotBusy           Code = "slot_busy"
	CodeNoActiveAuction    Code = "no_active_auction"
	CodeNothingToWithdraw  Code = "nothing_to_withdraw"

	// Value
	CodeBidTooLow Code = "bid_too_low"

	// Lookup
	CodeUnknownAssessor Code = "unknown_assessor"
	CodeUnknownCharity  Code = "unknown_charity"
	CodeUnknownDonation Code = "unknown_donation"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeWrongRole, CodeNotOwner, CodeNotAssignedAssessor:
		return http.StatusForbidden
	case CodeNotFound, CodeUnknownAssessor, CodeUnknownCharity, CodeUnknownDonation:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyRegistered, CodeAlreadyAssigned, CodeWrongDonationState,
		CodeSlotBusy, CodeNoActiveAuction, CodeNothingToWithdraw:
		return http.StatusConflict
	case CodeBidTooLow:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
