package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

// InvitationNotice is everything a delivery channel needs to send one
// invitation email.
type InvitationNotice struct {
	Invitation       domain.Invitation
	OrganizationName string
	AcceptURL        string
	IsResend         bool
}

// Notifier delivers invitation emails. Implementations must be safe for
// concurrent use.
type Notifier interface {
	SendInvitation(ctx context.Context, n InvitationNotice) error
	SendExpiryReminder(ctx context.Context, inv domain.Invitation) error
}

// AcceptURL builds the link carried in an invitation email.
func AcceptURL(base, ticket string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "?ticket=" + url.QueryEscape(ticket)
	}
	q := u.Query()
	q.Set("ticket", ticket)
	u.RawQuery = q.Encode()
	return u.String()
}

// LogNotifier only logs. It is the default when no delivery channel is
// configured, and never logs the acceptance link.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendInvitation(ctx context.Context, notice InvitationNotice) error {
	n.Logger.InfoContext(ctx, "invitation issued",
		slog.String("invitation_id", notice.Invitation.ID),
		slog.String("organization_id", notice.Invitation.OrganizationID),
		slog.String("email", notice.Invitation.Email),
		slog.String("role", string(notice.Invitation.Role)),
		slog.Bool("resend", notice.IsResend),
	)
	return nil
}

func (n LogNotifier) SendExpiryReminder(ctx context.Context, inv domain.Invitation) error {
	n.Logger.InfoContext(ctx, "invitation expiring soon",
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", inv.OrganizationID),
		slog.String("email", inv.Email),
		slog.Time("expires_at", inv.ExpiresAt),
	)
	return nil
}

// WebhookNotifier POSTs a JSON event per notification to an external mailer.
type WebhookNotifier struct {
	URL    string
	Secret string // sent as X-Webhook-Secret when set
	Client *http.Client
}

type webhookEvent struct {
	Type             string    `json:"type"`
	InvitationID     string    `json:"invitationId"`
	OrganizationID   string    `json:"organizationId"`
	OrganizationName string    `json:"organizationName,omitempty"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	ExpiresAt        time.Time `json:"expiresAt"`
	AcceptURL        string    `json:"acceptUrl,omitempty"`
	IsResend         bool      `json:"isResend,omitempty"`
}

func (n WebhookNotifier) SendInvitation(ctx context.Context, notice InvitationNotice) error {
	inv := notice.Invitation
	return n.post(ctx, webhookEvent{
		Type:             "invitation.issued",
		InvitationID:     inv.ID,
		OrganizationID:   inv.OrganizationID,
		OrganizationName: notice.OrganizationName,
		Email:            inv.Email,
		Role:             string(inv.Role),
		ExpiresAt:        inv.ExpiresAt,
		AcceptURL:        notice.AcceptURL,
		IsResend:         notice.IsResend,
	})
}

func (n WebhookNotifier) SendExpiryReminder(ctx context.Context, inv domain.Invitation) error {
	return n.post(ctx, webhookEvent{
		Type:           "invitation.expiring",
		InvitationID:   inv.ID,
		OrganizationID: inv.OrganizationID,
		Email:          inv.Email,
		Role:           string(inv.Role),
		ExpiresAt:      inv.ExpiresAt,
	})
}

func (n WebhookNotifier) post(ctx context.Context, ev webhookEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.Secret != "" {
		req.Header.Set("X-Webhook-Secret", n.Secret)
	}

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", ev.Type, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s: unexpected status %d", ev.Type, resp.StatusCode)
	}
	return nil
}
