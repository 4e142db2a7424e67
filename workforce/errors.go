/*
errors.go - Typed error taxonomy for the workforce core

PURPOSE:
  All errors callers can branch on, in one place. The taxonomy distinguishes
  "your input was wrong" (validation) from "this conflicts with existing
  state" (conflict) from "the thing you referenced does not exist" (not
  found) from "something broke underneath" (persistence). API layers map
  these to status codes; raw storage error text is never the caller-visible
  message.

ERROR CATEGORIES:
  1. Validation - malformed or missing input; retrying unchanged cannot succeed
  2. NotFound   - referenced request/record/employee absent
  3. Conflict   - state-machine violation (deciding a decided request,
                  recomputing a finalized payroll line)
  4. Persistence - underlying storage failure; surfaced generically

USAGE:
  if workforce.IsConflict(err) { ... }

  var verr *workforce.ValidationError
  if errors.As(err, &verr) { log.Println(verr.Field) }

SEE ALSO:
  - request.go, payroll.go: Produce these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package workforce

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input-validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced request, record, or employee
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on state-machine violations: one-shot
	// transitions re-attempted, finalized records recomputed.
	ErrConflict = errors.New("state conflict")

	// ErrPersistence is returned when the storage layer fails. The cause is
	// kept for logs; callers only see the category.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context for logs and field-level feedback
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names what was looked up.
type NotFoundError struct {
	Kind string // "request", "employee", "payroll line"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError describes a rejected state transition.
type ConflictError struct {
	Kind   string
	Key    string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Key, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PersistenceError wraps a storage failure. Error() includes the cause for
// logging; Unwrap deliberately returns only the sentinel so callers cannot
// branch on driver internals.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// PersistenceFailure wraps err unless it already belongs to the taxonomy,
// so typed errors raised inside a transaction pass through unchanged.
func PersistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsConflict(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
