package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler streams an organization's invitation changes as
// Server-Sent Events. Each event is an invitesdk.ChangeEvent under the
// "change" event name. The stream is an invalidation signal only; clients
// re-fetch the pending list on every event.
type EventsHandler struct {
	Feed      store.ChangeFeed
	Heartbeat time.Duration
}

// ServeHTTP godoc
//
//	@Summary		Stream invitation changes
//	@Description	Server-Sent Events stream of insert, update and delete notifications for the organization's invitations. A RESYNC event means events may have been missed.
//	@Tags			Invitations
//	@Produce		text/event-stream
//	@Param			orgID	path		string					true	"Organization ID"
//	@Success		200		{object}	invitesdk.ChangeEvent	"event: change"
//	@Failure		401		{object}	invitesdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	invitesdk.ErrorResponse	"not a member of the organization"
//	@Failure		503		{object}	invitesdk.ErrorResponse	"feed unavailable"
//	@Security		BearerAuth
//	@Router			/v1/organizations/{orgID}/invitations/events [get].
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	orgID := r.PathValue("orgID")

	rc := http.NewResponseController(w)

	sub, err := h.Feed.Subscribe(orgID)
	if err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "Change feed unavailable")
		return
	}
	defer sub.Close()

	// The server's write timeout would cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "retry: 3000\n\n")
	if err := rc.Flush(); err != nil {
		log.Warn("event stream not flushable", "error", err)
		return
	}

	interval := h.Heartbeat
	if interval <= 0 {
		interval = defaultHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug("event stream opened", "organization_id", orgID)
	defer log.Debug("event stream closed", "organization_id", orgID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Error("failed to marshal change event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
