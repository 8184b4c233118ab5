package service

import "errors"

var (
	// ErrQueryFailure means the invitation set could not be read. Callers
	// must treat it as unknown state, not as "no invitations".
	ErrQueryFailure = errors.New("invitation query failed")

	// ErrMutationFailure means a cancel or accept could not be applied for a
	// reason other than the invitation's state.
	ErrMutationFailure = errors.New("invitation mutation failed")

	// ErrInvitationNotPending means the conditional update affected no row:
	// the invitation belongs to another organization, or it already moved to
	// a terminal status (including losing a race with the sweeper).
	ErrInvitationNotPending = errors.New("invitation is not pending")

	ErrInvitationNotFound      = errors.New("invitation not found or expired")
	ErrInvitationEmailMismatch = errors.New("invitation was issued to a different email")
	ErrInvalidIssueRequest     = errors.New("invalid invitation request")
)
