package domain

// IssueItem is one requested recipient.
type IssueItem struct {
	Email string
	Role  string
}

// IssueRequest asks for invitations to be created in one organization.
// IsResend lets a new invitation supersede an existing pending one.
type IssueRequest struct {
	OrganizationID   string
	OrganizationName string
	InvitedBy        string
	Invitations      []IssueItem
	IsResend         bool
}

// IssueSuccess reports an invitation that was created and delivered.
type IssueSuccess struct {
	Email        string
	Status       Status
	InvitationID string
}

// IssueFailure reports a recipient that could not be fully processed.
// InvitationID is set when the row was created but delivery failed.
type IssueFailure struct {
	Email        string
	Error        string
	InvitationID string
}

// IssueResult has exactly one entry per requested email across Results and
// Errors.
type IssueResult struct {
	Results []IssueSuccess
	Errors  []IssueFailure
	Message string
}
