package scrim

import "errors"

// Domain errors returned to the invoking actor. All checks happen before
// any write, so a returned error means no state changed.
var (
	// Validation
	ErrNoRoles         = errors.New("at least one role is required")
	ErrInvalidRole     = errors.New("role is not part of this game mode")
	ErrUnknownGameMode = errors.New("unknown game mode")
	ErrNoAccount       = errors.New("no usable account for this user")

	// Conflict
	ErrAlreadyQueued = errors.New("already queued with these roles")
	ErrRoleFull      = errors.New("no open slot for this role")
	ErrSessionClosed = errors.New("session is not open")

	// Not found
	ErrSessionNotFound = errors.New("session not found")
	ErrNotInQueue      = errors.New("not in the session queue")
	ErrQueueEntryGone  = errors.New("queue entry no longer exists")
	ErrNotInSession    = errors.New("user is neither queued nor selected")

	// Authorization
	ErrNotCreator = errors.New("only the session creator may do this")
)

// Kind buckets domain errors for the command layer's reply formatting.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuthorization
)

// KindOf classifies err into its taxonomy bucket. Unrecognized errors are
// internal and should be reported generically.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNoRoles),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrUnknownGameMode),
		errors.Is(err, ErrNoAccount):
		return KindValidation
	case errors.Is(err, ErrAlreadyQueued),
		errors.Is(err, ErrRoleFull),
		errors.Is(err, ErrSessionClosed):
		return KindConflict
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrNotInQueue),
		errors.Is(err, ErrQueueEntryGone),
		errors.Is(err, ErrNotInSession):
		return KindNotFound
	case errors.Is(err, ErrNotCreator):
		return KindAuthorization
	}
	return KindInternal
}
