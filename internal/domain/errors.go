package domain

import "errors"

// Error taxonomy shared by services and mapped to HTTP statuses by the
// transport layer. Wrap with fmt.Errorf("...: %w", Err...) so errors.Is works
// through the call chain.
var (
	// ErrNotFound: a referenced individual, prompt, prompt type or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument: unrecognized status, unparseable date range,
	// missing required signature, or a signature supplied for a status that
	// must not carry one.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict: reserved for future uniqueness constraints. No status
	// transition currently triggers it.
	ErrConflict = errors.New("conflicting state")

	// ErrUnavailable: underlying storage unreachable.
	ErrUnavailable = errors.New("storage unavailable")
)
