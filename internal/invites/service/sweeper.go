package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/pkg/otelx"
)

// SweepSummary reports one sweep pass.
type SweepSummary struct {
	Expired         int64 `json:"expired"`
	ExpiringSoon    int   `json:"expiringSoon"`
	RemindersSent   int   `json:"remindersSent"`
	RemindersFailed int   `json:"remindersFailed"`
}

// ExpirySweeper moves overdue pending invitations to expired and reminds
// invitees whose invitation expires within domain.ExpiringSoonWindow.
// Sweep is idempotent and safe to call while the background loop runs.
type ExpirySweeper struct {
	Store    store.Store
	Notifier Notifier
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	mu       sync.Mutex
	reminded map[string]time.Time // invitation id -> expires_at

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewExpirySweeper creates a sweeper. If interval is 0 or negative it
// defaults to 1 hour.
func NewExpirySweeper(st store.Store, notifier Notifier, logger *slog.Logger, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &ExpirySweeper{
		Store:    st,
		Notifier: notifier,
		Logger:   logger,
		Interval: interval,
		reminded: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *ExpirySweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Start begins the background loop. It sweeps once immediately.
func (s *ExpirySweeper) Start() {
	go s.run()
	s.Logger.Info("expiry sweeper started", "interval", s.Interval)
}

// Stop shuts the loop down and waits for an in-flight sweep to finish.
func (s *ExpirySweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("expiry sweeper stopped")
	})
}

func (s *ExpirySweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweepOnce()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce()
		case <-s.stopCh:
			return
		}
	}
}

func (s *ExpirySweeper) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.Logger.Error("expiry sweep failed", "error", err)
	}
}

// Sweep runs one pass: a single set-based expiry update, then the
// expiring-soon query, then best-effort reminders. Reminder failures are
// logged and counted; only a store failure is returned.
func (s *ExpirySweeper) Sweep(ctx context.Context) (SweepSummary, error) {
	ctx, span := tracer.Start(ctx, "ExpirySweeper.Sweep")
	defer span.End()

	now := s.now()

	expired, err := s.Store.Invitations().MarkExpiredInvitations(ctx, now)
	if err != nil {
		return SweepSummary{}, otelx.RecordError(span, fmt.Errorf("%w: %v", ErrMutationFailure, err))
	}

	soon, err := s.Store.Invitations().ListExpiringSoon(ctx, now, domain.ExpiringSoonWindow)
	if err != nil {
		return SweepSummary{}, otelx.RecordError(span, fmt.Errorf("%w: %v", ErrQueryFailure, err))
	}

	summary := SweepSummary{Expired: expired, ExpiringSoon: len(soon)}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, exp := range s.reminded {
		if !exp.After(now) {
			delete(s.reminded, id)
		}
	}

	for _, inv := range soon {
		if _, done := s.reminded[inv.ID]; done {
			continue
		}
		if err := s.Notifier.SendExpiryReminder(ctx, inv); err != nil {
			summary.RemindersFailed++
			s.Logger.Warn("expiry reminder failed",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", err),
			)
			continue
		}
		s.reminded[inv.ID] = inv.ExpiresAt
		summary.RemindersSent++
	}

	span.SetAttributes(
		attribute.Int64("expired", summary.Expired),
		attribute.Int("expiring_soon", summary.ExpiringSoon),
	)

	s.Logger.Info("expiry sweep completed",
		slog.Int64("expired", summary.Expired),
		slog.Int("expiring_soon", summary.ExpiringSoon),
		slog.Int("reminders_sent", summary.RemindersSent),
		slog.Int("reminders_failed", summary.RemindersFailed),
	)
	return summary, nil
}
