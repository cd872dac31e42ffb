package session

import (
	goerrors "github.com/goliatone/go-errors"
)

const textCodeInvalidTransition = "INVALID_SESSION_TRANSITION"

// ErrInvalidTransition is returned when a requested status change is not
// allowed by the session lifecycle graph.
var ErrInvalidTransition = goerrors.New("invalid session state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// Status is the derived lifecycle state of a session. Exactly one holds at
// any observable instant.
type Status string

const (
	// StatusInitializing spans process start until the persisted token's
	// validity is first resolved. Never re-entered afterwards.
	StatusInitializing  Status = "initializing"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// allowedTransitions is the session lifecycle graph. Self-loops cover
// renewal (authenticated) and repeated logout (anonymous).
var allowedTransitions = map[Status][]Status{
	StatusInitializing:  {StatusAuthenticated, StatusAnonymous},
	StatusAuthenticated: {StatusAuthenticated, StatusAnonymous},
	StatusAnonymous:     {StatusAuthenticated, StatusAnonymous},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// guardTransition validates a status change, returning a categorized error
// with both endpoints attached for diagnostics.
func guardTransition(from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}

	return ErrInvalidTransition.WithMetadata(map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}
