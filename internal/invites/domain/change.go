package domain

// ChangeOp names what happened to an invitation row.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"

	// ChangeResync tells subscribers events may have been missed (e.g. the
	// notification connection dropped) and they should re-fetch.
	ChangeResync ChangeOp = "RESYNC"
)

// ChangeEvent is a change notification for one organization's invitations.
type ChangeEvent struct {
	Op             ChangeOp `json:"op"`
	OrganizationID string   `json:"organization_id,omitempty"`
	InvitationID   string   `json:"id,omitempty"`
	Status         Status   `json:"status,omitempty"`
}
