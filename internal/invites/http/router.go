package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/jwtx"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"

	_ "github.com/aussiebroadwan/brandhub/api/invites" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// SweepSecretHeader carries the scheduler's shared secret on sweep triggers.
const SweepSecretHeader = "X-Sweep-Secret"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	InvitationService *service.InvitationService
	Sweeper           *service.ExpirySweeper

	// SweepSecret enables POST /v1/invitations/sweep. Empty disables it.
	SweepSecret string

	// Heartbeat is the idle interval between keep-alive comments on the
	// event stream. Defaults to 25s.
	Heartbeat time.Duration
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Request logging wraps CORS so preflights are logged too.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOrganizationInvitations()
	r.registerInvitations()
	r.registerSweep()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Brandhub Invitations API
//	@version		0.1.0
//	@description	Multi-tenant team invitation lifecycle: issue, list, cancel, accept and expire invitations.
//	@description
//	@description				Bearer tokens are EdDSA JWTs issued by the identity provider and carry the caller's organization roles.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/brandhub
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	SweepSecret
//	@in							header
//	@name						X-Sweep-Secret
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOrganizationInvitations() {
	org := httpx.PathOrgID("orgID")

	pending := &ListPendingHandler{InvitationService: r.InvitationService}
	cancel := &CancelHandler{InvitationService: r.InvitationService}
	events := &EventsHandler{Feed: r.store.Changes(), Heartbeat: r.Heartbeat}

	// GET pending - lenient by user, clients poll every minute
	r.Mux.Handle("GET /v1/organizations/{orgID}/invitations/pending",
		httpx.Chain(pending,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireOrgMember(org),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST cancel - admin only
	r.Mux.Handle("POST /v1/organizations/{orgID}/invitations/{id}/cancel",
		httpx.Chain(cancel,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireOrgRole(org, "admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET events - long-lived stream, limit reconnect storms only
	r.Mux.Handle("GET /v1/organizations/{orgID}/invitations/events",
		httpx.Chain(events,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireOrgMember(org),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	send := &SendInvitationsHandler{InvitationService: r.InvitationService}
	outstanding := &OutstandingHandler{InvitationService: r.InvitationService}
	accept := &AcceptHandler{InvitationService: r.InvitationService}

	// POST send - admin of the body's organization, checked in the handler
	r.Mux.Handle("POST /v1/invitations/send",
		httpx.Chain(send,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/invitations/outstanding",
		httpx.Chain(outstanding,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Accept endpoints - strict, tickets must not be guessable by retry
	r.Mux.Handle("POST /v1/invitations/{id}/accept",
		httpx.Chain(http.HandlerFunc(accept.HandleAcceptByID),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(accept.HandleAcceptTicket),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSweep() {
	h := &SweepHandler{Sweeper: r.Sweeper}

	// POST sweep - external scheduler, shared secret
	r.Mux.Handle("POST /v1/invitations/sweep",
		httpx.Chain(h,
			httpx.RequireSharedSecret(SweepSecretHeader, r.SweepSecret),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
