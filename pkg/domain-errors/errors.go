// Package derrors provides coded domain errors.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them here into coded errors that the transport layer maps onto HTTP
// statuses. Every rejection the engine can produce carries a Kind, a stable
// discriminator that callers surface verbatim to end users, in addition to
// the coarser Code used for status mapping.
package derrors

import (
	"errors"
	"fmt"
)

// Code is the coarse classification of a domain error, used for transport
// status mapping and metrics labels.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeFailedPrecondition Code = "failed_precondition"
	CodeLimitExceeded      Code = "limit_exceeded"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
)

// Kind is the precise failure discriminator. The set below is the complete
// rejection taxonomy of the engine; callers must pass kinds through unchanged.
type Kind string

const (
	// Authorization failures.
	KindNotOwner        Kind = "NotOwner"
	KindNotCreator      Kind = "NotCreator"
	KindNotKeeper       Kind = "NotKeeper"
	KindNotAdmin        Kind = "NotAdmin"
	KindNotTreasury     Kind = "NotTreasury"
	KindNotFeeRecipient Kind = "NotFeeRecipient"

	// Not-found failures.
	KindCreatorNotFound Kind = "CreatorNotFound"
	KindDropNotFound    Kind = "DropNotFound"
	KindPhaseNotFound   Kind = "PhaseNotFound"

	// State-gate failures.
	KindLaunchpadPaused      Kind = "LaunchpadPaused"
	KindDropPaused           Kind = "DropPaused"
	KindDropAlreadyFinalized Kind = "DropAlreadyFinalized"
	KindPhaseNotStarted      Kind = "PhaseNotStarted"
	KindPhaseEnded           Kind = "PhaseEnded"
	KindCreatorInactive      Kind = "CreatorInactive"

	// Capacity and limit failures.
	KindMaxSupplyReached     Kind = "MaxSupplyReached"
	KindMaxPerWalletExceeded Kind = "MaxPerWalletExceeded"
	KindPhaseCapReached      Kind = "PhaseCapReached"
	KindTooManyPhases        Kind = "TooManyPhases"
	KindCapacityExceeded     Kind = "CapacityExceeded"
	KindAlreadyRegistered    Kind = "AlreadyRegistered"

	// Input validation failures.
	KindZeroAddress         Kind = "ZeroAddress"
	KindZeroAmount          Kind = "ZeroAmount"
	KindZeroSupply          Kind = "ZeroSupply"
	KindInvalidFeeBps       Kind = "InvalidFeeBps"
	KindInvalidPhaseBounds  Kind = "InvalidPhaseBounds"
	KindInvalidProof        Kind = "InvalidProof"
	KindAllowlistRequired   Kind = "AllowlistRequired"
	KindEmptyBatch          Kind = "EmptyBatch"
	KindInsufficientPayment Kind = "InsufficientPayment"

	// Value-transfer failures. Fatal to the enclosing operation, never
	// silently swallowed.
	KindTransferFailed Kind = "TransferFailed"
)

// Error is a coded domain error. Message is safe to return to callers.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error without a taxonomy kind (plumbing failures,
// malformed input outside the engine taxonomy).
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewKind creates a domain error carrying a taxonomy kind.
func NewKind(code Code, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WrapKind attaches a code, kind, and message to an underlying error.
func WrapKind(err error, code Code, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasKind reports whether err carries the given taxonomy kind.
func HasKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf extracts the taxonomy kind from err, or "" if none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so transport never leaks internals.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
