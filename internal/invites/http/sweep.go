package http

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
)

type SweepHandler struct {
	Sweeper *service.ExpirySweeper
}

// ServeHTTP godoc
//
//	@Summary		Run the expiry sweep
//	@Description	Expires every pending invitation whose expiry has passed and counts those expiring within 24 hours. Idempotent; no request body.
//	@Tags			Sweep
//	@Produce		json
//	@Success		200	{object}	invitesdk.SweepResponse			"success, expired, expiringSoon, message"
//	@Failure		401	{object}	invitesdk.ErrorResponse			"invalid secret"
//	@Failure		500	{object}	invitesdk.SweepErrorResponse	"error"
//	@Security		SweepSecret
//	@Router			/v1/invitations/sweep [post].
func (h *SweepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, invitesdk.SweepErrorResponse{Error: err.Error()})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitesdk.SweepResponse{
		Success:      true,
		Expired:      sum.Expired,
		ExpiringSoon: sum.ExpiringSoon,
		Message: fmt.Sprintf("Marked %d invitation(s) as expired, %d expiring within 24 hours",
			sum.Expired, sum.ExpiringSoon),
	})
}
