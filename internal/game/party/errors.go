package party

import "errors"

// Errors returned by Coordinator operations. All are client-recoverable and
// are detected before any state changes. Texts are shown to players as is.
var (
	ErrNotInParty     = errors.New("You are not in a party.")
	ErrNotOwner       = errors.New("You do not own this party.")
	ErrNoSuchInvite   = errors.New("You're not invited to a party.")
	ErrAlreadyInParty = errors.New("You're already in a party.")
	ErrBlocked        = errors.New("This person doesn't accept invites from you.")
	ErrInviteSelf     = errors.New("You cannot invite yourself.")
)

// ErrStaleInvite is returned by InvitePool.Take for an invite whose party was
// disbanded. The coordinator resolves it by notifying the recipient.
var ErrStaleInvite = errors.New("party no longer exists")
