package domain

import "time"

// Member is a user's role in an organization. Accepting an invitation
// creates or updates one.
type Member struct {
	OrganizationID string
	UserID         string
	Email          string
	Role           Role
	CreatedAt      time.Time
}
