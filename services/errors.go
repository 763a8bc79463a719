package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected outcomes. Callers branch on these with
// errors.Is; none of them indicate an infrastructure fault.
var (
	// ErrInvalidPhoneFormat means the input could not be reduced to a
	// canonical phone key. Caller's fault, surface to the end user.
	ErrInvalidPhoneFormat = errors.New("invalid phone number format")

	// ErrCustomerNotFound means no customer exists for the canonical phone.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrNoBusinessFound means the customer has no active business
	// relationship. A valid outcome, not a failure.
	ErrNoBusinessFound = errors.New("no business found for phone")

	// ErrRelationshipNotFound means an operation presumed a
	// (customer, business) relationship that does not exist.
	ErrRelationshipNotFound = errors.New("customer has no relationship with this business")
)

// AmbiguousError reports that discovery matched more than one active
// business. It carries the ranked candidates so the caller can present a
// choice to the human instead of silently picking one.
type AmbiguousError struct {
	Matches []BusinessMatch
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("phone matches %d businesses", len(e.Matches))
}

// PersistenceError wraps a datastore failure (unreachable, timed out,
// unexpected shape). This layer never retries; retry policy belongs to the
// caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
