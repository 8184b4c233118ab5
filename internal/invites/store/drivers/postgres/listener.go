package postgres

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
)

const (
	notifyChannel = "team_invitations"

	listenerMinReconnect = 2 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

type listener struct {
	pl     *pq.Listener
	hub    *store.Hub
	logger *slog.Logger
	done   chan struct{}
}

func startListener(dsn string, hub *store.Hub, logger *slog.Logger) (*listener, error) {
	logger = logger.With("channel", notifyChannel)

	pl := pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventDisconnected:
				logger.Warn("notification connection lost", "error", err)
			case pq.ListenerEventReconnected:
				logger.Info("notification connection restored")
			case pq.ListenerEventConnectionAttemptFailed:
				logger.Warn("notification reconnect failed", "error", err)
			}
		})

	if err := pl.Listen(notifyChannel); err != nil {
		_ = pl.Close()
		return nil, err
	}

	l := &listener{pl: pl, hub: hub, logger: logger, done: make(chan struct{})}
	go l.run()
	return l, nil
}

func (l *listener) run() {
	defer close(l.done)

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-l.pl.Notify:
			if !ok {
				return
			}
			// pq sends nil after a reconnect; anything may have been missed.
			if n == nil {
				l.hub.Publish(domain.ChangeEvent{Op: domain.ChangeResync})
				continue
			}
			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				l.logger.Warn("discarding malformed notification", "error", err)
				continue
			}
			l.hub.Publish(ev)

		case <-ticker.C:
			go func() { _ = l.pl.Ping() }()
		}
	}
}

func (l *listener) close() {
	_ = l.pl.Close()
	<-l.done
}
