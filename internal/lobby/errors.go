package lobby

import "errors"

// Notices for commands that reference a player who is not online.
var (
	ErrInvitedMissing  = errors.New("The invited player doesn't exist")
	ErrInvitingMissing = errors.New("The inviting player doesn't exist")
	ErrKickedMissing   = errors.New("The kicked player doesn't exist")
	ErrAlreadyOnline   = errors.New("You are already logged in.")
	ErrBlockListFailed = errors.New("Your block list could not be updated.")
)
