package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/pkg/cryptox"
	"github.com/aussiebroadwan/brandhub/pkg/idx"
	"github.com/aussiebroadwan/brandhub/pkg/otelx"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

// MaxInvitationsPerRequest bounds a single Issue call.
const MaxInvitationsPerRequest = 50

var tracer = otelx.Tracer("github.com/aussiebroadwan/brandhub/internal/invites/service")

// InvitationService issues, lists, cancels and accepts team invitations.
// Every transition out of pending is a conditional update in the store; a
// zero-row result is reported as ErrInvitationNotPending.
type InvitationService struct {
	Store    store.Store
	Notifier Notifier

	// TTL defaults to domain.DefaultInvitationTTL.
	TTL time.Duration

	// AcceptBaseURL is the acceptance page the emailed link points at.
	AcceptBaseURL string

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *InvitationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return domain.DefaultInvitationTTL
}

// ListPending returns the organization's pending invitations enriched
// against the current time.
func (s *InvitationService) ListPending(ctx context.Context, orgID string) ([]domain.PendingInvitation, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.ListPending",
		trace.WithAttributes(attribute.String("organization_id", orgID)))
	defer span.End()

	rows, err := s.Store.Invitations().ListPendingInvitations(ctx, orgID, s.now())
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list pending invitations",
			slog.String("organization_id", orgID),
			slog.Any("error", err),
		)
		return nil, otelx.RecordError(span, fmt.Errorf("%w: %v", ErrQueryFailure, err))
	}
	return rows, nil
}

// Cancel moves a pending invitation of orgID to cancelled.
func (s *InvitationService) Cancel(ctx context.Context, orgID, invitationID string) error {
	ctx, span := tracer.Start(ctx, "InvitationService.Cancel",
		trace.WithAttributes(
			attribute.String("organization_id", orgID),
			attribute.String("invitation_id", invitationID),
		))
	defer span.End()

	log := slogx.FromContext(ctx)

	n, err := s.Store.Invitations().CancelInvitation(ctx, orgID, invitationID)
	if err != nil {
		log.Error("failed to cancel invitation", slog.String("invitation_id", invitationID), slog.Any("error", err))
		return otelx.RecordError(span, fmt.Errorf("%w: %v", ErrMutationFailure, err))
	}
	if n == 0 {
		return ErrInvitationNotPending
	}

	log.Info("invitation cancelled",
		slog.String("organization_id", orgID),
		slog.String("invitation_id", invitationID),
	)
	return nil
}

// Outstanding returns the pending, unexpired invitations addressed to email
// in any organization, oldest first.
func (s *InvitationService) Outstanding(ctx context.Context, email string) ([]domain.Invitation, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.Outstanding")
	defer span.End()

	rows, err := s.Store.Invitations().ListOutstandingInvitationsForEmail(ctx, email, s.now())
	if err != nil {
		return nil, otelx.RecordError(span, fmt.Errorf("%w: %v", ErrQueryFailure, err))
	}
	return rows, nil
}

// Issue creates one invitation per requested email and hands each to the
// Notifier. Every requested item produces exactly one entry in either
// Results or Errors; nothing is collapsed into a single outcome.
//
// An email that already has a live pending invitation is rejected unless
// IsResend is set, in which case the old invitation is cancelled and
// replaced in the same transaction. A created invitation whose email could
// not be delivered is reported in Errors with its InvitationID.
func (s *InvitationService) Issue(ctx context.Context, req domain.IssueRequest) (domain.IssueResult, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.Issue",
		trace.WithAttributes(
			attribute.String("organization_id", req.OrganizationID),
			attribute.Int("invitations", len(req.Invitations)),
			attribute.Bool("resend", req.IsResend),
		))
	defer span.End()

	log := slogx.FromContext(ctx)

	switch {
	case req.OrganizationID == "":
		return domain.IssueResult{}, fmt.Errorf("%w: organizationId is required", ErrInvalidIssueRequest)
	case req.InvitedBy == "":
		return domain.IssueResult{}, fmt.Errorf("%w: inviter is required", ErrInvalidIssueRequest)
	case len(req.Invitations) == 0:
		return domain.IssueResult{}, fmt.Errorf("%w: invitations must not be empty", ErrInvalidIssueRequest)
	case len(req.Invitations) > MaxInvitationsPerRequest:
		return domain.IssueResult{}, fmt.Errorf("%w: at most %d invitations per request",
			ErrInvalidIssueRequest, MaxInvitationsPerRequest)
	}

	result := domain.IssueResult{
		Results: []domain.IssueSuccess{},
		Errors:  []domain.IssueFailure{},
	}
	seen := make(map[string]struct{}, len(req.Invitations))

	for _, item := range req.Invitations {
		email, err := domain.ParseEmail(item.Email)
		if err != nil {
			result.Errors = append(result.Errors, domain.IssueFailure{Email: item.Email, Error: err.Error()})
			continue
		}
		if _, dup := seen[email]; dup {
			result.Errors = append(result.Errors, domain.IssueFailure{Email: email, Error: "duplicate email in request"})
			continue
		}
		seen[email] = struct{}{}

		role, err := domain.ParseRole(item.Role)
		if err != nil {
			result.Errors = append(result.Errors, domain.IssueFailure{Email: email, Error: err.Error()})
			continue
		}

		inv, ticket, err := s.createOne(ctx, req, email, role)
		if err != nil {
			log.Warn("invitation not created",
				slog.String("organization_id", req.OrganizationID),
				slog.String("email", email),
				slog.Any("error", err),
			)
			result.Errors = append(result.Errors, domain.IssueFailure{Email: email, Error: err.Error()})
			continue
		}

		notice := InvitationNotice{
			Invitation:       inv,
			OrganizationName: req.OrganizationName,
			AcceptURL:        AcceptURL(s.AcceptBaseURL, ticket),
			IsResend:         req.IsResend,
		}
		if err := s.Notifier.SendInvitation(ctx, notice); err != nil {
			log.Error("invitation email failed",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
			result.Errors = append(result.Errors, domain.IssueFailure{
				Email:        email,
				Error:        "invitation created but email delivery failed: " + err.Error(),
				InvitationID: inv.ID,
			})
			continue
		}

		result.Results = append(result.Results, domain.IssueSuccess{
			Email:        email,
			Status:       domain.StatusPending,
			InvitationID: inv.ID,
		})
	}

	result.Message = fmt.Sprintf("%d of %d invitations sent", len(result.Results), len(req.Invitations))
	span.SetAttributes(attribute.Int("sent", len(result.Results)), attribute.Int("failed", len(result.Errors)))

	log.Info("invitations issued",
		slog.String("organization_id", req.OrganizationID),
		slog.Int("sent", len(result.Results)),
		slog.Int("failed", len(result.Errors)),
		slog.Bool("resend", req.IsResend),
	)
	return result, nil
}

var errAlreadyInvited = errors.New("a pending invitation already exists for this email")

// createOne supersedes any live pending invitation (resend only) and
// inserts the new one atomically. It returns the raw ticket, which is never
// stored.
func (s *InvitationService) createOne(
	ctx context.Context,
	req domain.IssueRequest,
	email string,
	role domain.Role,
) (domain.Invitation, string, error) {
	ticket, fingerprint, err := cryptox.NewTicket()
	if err != nil {
		return domain.Invitation{}, "", err
	}

	now := s.now()
	inv := domain.Invitation{
		ID:             idx.NewAt(now).String(),
		OrganizationID: req.OrganizationID,
		Email:          email,
		Role:           role,
		InvitedBy:      req.InvitedBy,
		Status:         domain.StatusPending,
		TicketHash:     fingerprint,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Invitations().FindPendingInvitation(ctx, req.OrganizationID, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case !existing.ExpiresAt.After(now):
			// Past expiry but not yet swept; the sweeper will expire it.
		case !req.IsResend:
			return errAlreadyInvited
		default:
			if _, err := tx.Invitations().CancelInvitation(ctx, req.OrganizationID, existing.ID); err != nil {
				return err
			}
		}
		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		return domain.Invitation{}, "", err
	}
	return inv, ticket, nil
}

// AcceptByID accepts an outstanding invitation addressed to email on behalf
// of userID and grants the invited role.
func (s *InvitationService) AcceptByID(ctx context.Context, invitationID, userID, email string) (domain.Invitation, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.AcceptByID",
		trace.WithAttributes(attribute.String("invitation_id", invitationID)))
	defer span.End()

	inv, err := s.accept(ctx, userID, email, func(tx store.Tx, now time.Time) (domain.Invitation, error) {
		return tx.Invitations().GetInvitationByID(ctx, invitationID)
	})
	return inv, otelx.RecordError(span, err)
}

// AcceptTicket accepts the invitation an emailed ticket points at.
func (s *InvitationService) AcceptTicket(ctx context.Context, ticket, userID, email string) (domain.Invitation, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.AcceptTicket")
	defer span.End()

	if ticket == "" {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	hash := cryptox.FingerprintToken(ticket)

	inv, err := s.accept(ctx, userID, email, func(tx store.Tx, now time.Time) (domain.Invitation, error) {
		return tx.Invitations().GetPendingInvitationByTicketHash(ctx, hash, now)
	})
	return inv, otelx.RecordError(span, err)
}

func (s *InvitationService) accept(
	ctx context.Context,
	userID, email string,
	lookup func(tx store.Tx, now time.Time) (domain.Invitation, error),
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	var accepted domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := lookup(tx, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}

		if inv.Email != domain.NormalizeEmail(email) {
			log.Warn("invitation accepted by wrong account",
				slog.String("invitation_id", inv.ID),
				slog.String("user_id", userID),
			)
			return ErrInvitationEmailMismatch
		}

		n, err := tx.Invitations().AcceptInvitation(ctx, inv.ID, userID, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInvitationNotPending
		}

		if err := tx.Members().UpsertMember(ctx, domain.Member{
			OrganizationID: inv.OrganizationID,
			UserID:         userID,
			Email:          inv.Email,
			Role:           inv.Role,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		inv.Status = domain.StatusAccepted
		inv.AcceptedBy = &userID
		inv.AcceptedAt = &now
		accepted = inv
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) ||
			errors.Is(err, ErrInvitationEmailMismatch) ||
			errors.Is(err, ErrInvitationNotPending) {
			return domain.Invitation{}, err
		}
		log.Error("failed to accept invitation", slog.Any("error", err))
		return domain.Invitation{}, fmt.Errorf("%w: %v", ErrMutationFailure, err)
	}

	log.Info("invitation accepted",
		slog.String("invitation_id", accepted.ID),
		slog.String("organization_id", accepted.OrganizationID),
		slog.String("user_id", userID),
		slog.String("role", string(accepted.Role)),
	)
	return accepted, nil
}
