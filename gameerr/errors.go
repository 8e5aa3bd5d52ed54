package gameerr

import (
	"errors"
	"fmt"
)

// Kind classifies a gameplay error so the API layer can pick a status code
// and the client can decide whether the action is retryable.
type Kind int

const (
	// KindValidation marks malformed or unknown input (bad item id, bad slot).
	KindValidation Kind = iota
	// KindPrecondition marks a failed distance/organization/ownership check.
	KindPrecondition
	// KindQuota marks an exhausted limit (daily removals, protector counts).
	KindQuota
	// KindNotFound marks a business/enemy/item missing from the live cache.
	KindNotFound
	// KindPersistence marks a failed storage write. Non-fatal: gameplay
	// continues with in-memory state.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindQuota:
		return "quota"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Error is a gameplay error with a player-facing message. Messages name the
// exact unmet condition, numeric thresholds included.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Validationf builds a KindValidation error.
func Validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a KindPrecondition error.
func Preconditionf(format string, args ...interface{}) error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

// Quotaf builds a KindQuota error.
func Quotaf(format string, args ...interface{}) error {
	return &Error{Kind: KindQuota, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Persistencef builds a KindPersistence error wrapping the storage failure.
func Persistencef(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &Error{Kind: KindPersistence, Msg: msg}
}

// KindOf returns the Kind of err, or ok=false for non-gameplay errors.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// Is reports whether err is a gameplay error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
