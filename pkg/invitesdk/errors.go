package invitesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeForbidden       = "forbidden"
	ErrorCodeNotFound        = "not_found"
	ErrorCodeNotPending      = "not_pending"
	ErrorCodeEmailMismatch   = "email_mismatch"
	ErrorCodeQueryFailure    = "query_failure"
	ErrorCodeMutationFailure = "mutation_failure"
	ErrorCodeServerError     = "server_error"
)

// ============================================================================
// APIError - transport level error
// ============================================================================

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse turns an error body into an *APIError. Both the standard
// envelope and the sweep trigger's bare {error} are understood.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		code, desc := errResp.Error, errResp.ErrorDescription
		if desc == "" && resp.StatusCode >= 500 {
			// {error: "<message>"} from the sweep trigger
			code, desc = ErrorCodeServerError, errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Code: code, Description: desc}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// IsNotPending reports whether err means the invitation already left
// pending (accepted, cancelled, expired, or another organization's). Callers
// racing the sweeper treat it as a no-op.
func IsNotPending(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrorCodeNotPending
}

// ============================================================================
// Lifecycle errors
// ============================================================================

// QueryFailure means the pending set could not be read. The caller's view
// is unknown, not empty.
type QueryFailure struct {
	OrganizationID string
	Err            error
}

func (e *QueryFailure) Error() string {
	return fmt.Sprintf("query pending invitations for %s: %v", e.OrganizationID, e.Err)
}

func (e *QueryFailure) Unwrap() error { return e.Err }

// MutationFailure means a cancel or accept was rejected.
type MutationFailure struct {
	Op           string // "cancel", "accept"
	InvitationID string
	Err          error
}

func (e *MutationFailure) Error() string {
	return fmt.Sprintf("%s invitation %s: %v", e.Op, e.InvitationID, e.Err)
}

func (e *MutationFailure) Unwrap() error { return e.Err }

// PartialInviteFailure is returned with the response when at least one
// requested email failed. Response still lists every email's outcome.
type PartialInviteFailure struct {
	Response SendInvitationsResponse
}

func (e *PartialInviteFailure) Error() string {
	total := len(e.Response.Results) + len(e.Response.Errors)
	return fmt.Sprintf("%d of %d invitations failed", len(e.Response.Errors), total)
}

// Failed returns the failed entries.
func (e *PartialInviteFailure) Failed() []InviteError { return e.Response.Errors }

// ResendFailure means a resend did not produce a delivered invitation.
// Detail carries the upstream error for the email.
type ResendFailure struct {
	Email  string
	Detail string
	Err    error
}

func (e *ResendFailure) Error() string {
	return fmt.Sprintf("resend invitation to %s: %s", e.Email, e.Detail)
}

func (e *ResendFailure) Unwrap() error { return e.Err }

// ErrStaleAcceptance means a stashed ticket was too old or the user is
// already on the acceptance page. It is never shown to the user.
var ErrStaleAcceptance = errors.New("invitesdk: stale acceptance ticket")

// ErrNoTicket means nothing was stashed.
var ErrNoTicket = errors.New("invitesdk: no stashed ticket")
