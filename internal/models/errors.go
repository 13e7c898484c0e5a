package models

import "errors"

// Domain error taxonomy. Workflow and registry operations return these
// wrapped with context; the API layer maps them to HTTP status codes once.
var (
	// ErrNotFound means the referenced order, label or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a state-transition precondition was violated,
	// including a lost assignment race.
	ErrConflict = errors.New("conflict")

	// ErrForbidden means the actor's role lacks permission for the
	// requested transition.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidArgument means a malformed label definition or an
	// unparseable required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable means the storage gateway could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
