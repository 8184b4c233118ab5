package invitesdk

import "time"

// ErrorResponse is the error envelope every endpoint returns on failure.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Invitations
// ============================================================================

// Invitation is an invitation row as seen by clients. The ticket
// fingerprint is never exposed.
type Invitation struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	InvitedBy      string     `json:"invitedBy"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `json:"expiresAt"`
	AcceptedBy     *string    `json:"acceptedBy,omitempty"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
}

// PendingInvitation is a pending row enriched against the server clock at
// read time.
type PendingInvitation struct {
	Invitation
	IsExpiringSoon       bool `json:"isExpiringSoon"`
	HoursUntilExpiration int  `json:"hoursUntilExpiration"`
}

// ListPendingResponse is returned by
// GET /v1/organizations/{orgID}/invitations/pending.
type ListPendingResponse struct {
	Invitations []PendingInvitation `json:"invitations"`
	FetchedAt   time.Time           `json:"fetchedAt"`
}

// OutstandingResponse is returned by GET /v1/invitations/outstanding.
type OutstandingResponse struct {
	Invitations []Invitation `json:"invitations"`
}

// CancelResponse is returned by a successful cancel.
type CancelResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InvitationItem is one requested invitation.
type InvitationItem struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SendInvitationsRequest is the body of POST /v1/invitations/send.
type SendInvitationsRequest struct {
	OrganizationID   string           `json:"organizationId"`
	OrganizationName string           `json:"organizationName,omitempty"`
	Invitations      []InvitationItem `json:"invitations"`
	IsResend         bool             `json:"isResend,omitempty"`
}

// InviteResult reports an invitation that was created and delivered.
type InviteResult struct {
	Email        string `json:"email"`
	Status       string `json:"status"`
	InvitationID string `json:"invitationId,omitempty"`
}

// InviteError reports an invitation that was not created, or was created
// (InvitationID set) but could not be delivered.
type InviteError struct {
	Email        string `json:"email"`
	Error        string `json:"error"`
	InvitationID string `json:"invitationId,omitempty"`
}

// SendInvitationsResponse carries exactly one entry per requested email
// across Results and Errors. Success is false when any entry failed.
type SendInvitationsResponse struct {
	Success bool           `json:"success"`
	Results []InviteResult `json:"results"`
	Errors  []InviteError  `json:"errors"`
	Message string         `json:"message"`
}

// AcceptTicketRequest is the body of POST /v1/invitations/accept.
type AcceptTicketRequest struct {
	Ticket string `json:"ticket"`
}

// AcceptResponse is returned by both accept endpoints.
type AcceptResponse struct {
	Invitation Invitation `json:"invitation"`
}

// ============================================================================
// Sweep
// ============================================================================

// SweepResponse is returned by POST /v1/invitations/sweep on success.
type SweepResponse struct {
	Success      bool   `json:"success"`
	Expired      int64  `json:"expired"`
	ExpiringSoon int    `json:"expiringSoon"`
	Message      string `json:"message"`
}

// SweepErrorResponse is returned by POST /v1/invitations/sweep when the
// run failed.
type SweepErrorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// Realtime
// ============================================================================

// Change operations carried by ChangeEvent.Op.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"

	// OpResync means events may have been missed; re-fetch everything.
	OpResync = "RESYNC"
)

// ChangeEvent is one message on the organization's invitation stream.
type ChangeEvent struct {
	Op             string `json:"op"`
	OrganizationID string `json:"organization_id,omitempty"`
	InvitationID   string `json:"id,omitempty"`
	Status         string `json:"status,omitempty"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the readiness of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Keys     string `json:"keys"`
}
