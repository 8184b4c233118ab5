package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Status is the lifecycle state of an invitation. Only StatusPending is
// mutable; every transition out of it is one-way.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusCancelled || s == StatusExpired
}

func (s Status) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

// Role is the permission level granted when an invitation is accepted.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

var ErrInvalidRole = errors.New("role must be one of admin, editor, viewer")
var ErrInvalidEmail = errors.New("invalid email address")

// ParseRole accepts any casing of a known role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// NormalizeEmail lower-cases and trims an address. Invitation emails are
// matched case-insensitively everywhere, so they are stored normalized.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseEmail validates and normalizes a bare address ("a@b.c", no display name).
func ParseEmail(s string) (string, error) {
	norm := NormalizeEmail(s)
	addr, err := mail.ParseAddress(norm)
	if err != nil || addr.Address != norm {
		return "", ErrInvalidEmail
	}
	return norm, nil
}

const (
	// DefaultInvitationTTL is how long an issued invitation stays pending.
	DefaultInvitationTTL = 7 * 24 * time.Hour

	// ExpiringSoonWindow marks pending invitations that will expire within it.
	ExpiringSoonWindow = 24 * time.Hour
)

// Invitation is one row per invited email per organization.
type Invitation struct {
	ID             string
	OrganizationID string
	Email          string
	Role           Role
	InvitedBy      string
	Status         Status
	TicketHash     string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	AcceptedBy     *string
	AcceptedAt     *time.Time
}

// PendingInvitation is an invitation enriched with values derived from "now"
// at read time.
type PendingInvitation struct {
	Invitation

	IsExpiringSoon       bool
	HoursUntilExpiration int
}

// NewPendingInvitation derives the read-time fields for inv.
func NewPendingInvitation(inv Invitation, now time.Time) PendingInvitation {
	return PendingInvitation{
		Invitation:           inv,
		IsExpiringSoon:       IsExpiringSoon(inv, now),
		HoursUntilExpiration: HoursUntilExpiration(inv.ExpiresAt, now),
	}
}

// IsExpiringSoon is true for a pending invitation with
// now < expires_at <= now + ExpiringSoonWindow.
func IsExpiringSoon(inv Invitation, now time.Time) bool {
	if inv.Status != StatusPending {
		return false
	}
	return inv.ExpiresAt.After(now) && !inv.ExpiresAt.After(now.Add(ExpiringSoonWindow))
}

// HoursUntilExpiration is the whole number of hours left, floored and never
// negative.
func HoursUntilExpiration(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Hour)
}
