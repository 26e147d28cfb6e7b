// Package apperr defines the error taxonomy shared by the access-control
// core. Handlers map these onto HTTP statuses; the types carry only what a
// caller may learn (e.g. a denial never says whether the tenant exists).
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationDenied is returned for every failed permission
	// check. It deliberately does not distinguish "no such tenant" from
	// "not a member" from "insufficient level".
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrNotFound is returned for token lookup misses and absent entities.
	ErrNotFound = errors.New("not found")

	// ErrConflictingState is returned when an operation is invalid in the
	// entity's current state, e.g. clocking in while already clocked in.
	ErrConflictingState = errors.New("conflicting state")

	// ErrMembershipIntegrity signals a violated one-active-membership
	// invariant; permission checks fail closed when they observe it.
	ErrMembershipIntegrity = errors.New("membership data integrity violation")
)

// CapacityExceededError rejects a membership insert that would push a
// tenant past its user limit.
type CapacityExceededError struct {
	Limit int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("tenant user limit of %d exceeded", e.Limit)
}

// ValidationError rejects a write that violates a business rule.
// Rule identifies the specific sub-rule for callers and tests.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
}

// IsCapacityExceeded reports whether err is a CapacityExceededError.
func IsCapacityExceeded(err error) bool {
	var ce *CapacityExceededError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
