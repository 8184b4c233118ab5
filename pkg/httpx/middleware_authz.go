package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/brandhub/pkg/cryptox"
)

// OrgIDFunc pulls the organization a request targets.
type OrgIDFunc func(*http.Request) string

// PathOrgID reads the organization from a ServeMux path wildcard.
func PathOrgID(name string) OrgIDFunc {
	return func(r *http.Request) string { return r.PathValue(name) }
}

// RequireOrgMember lets the request through when the caller holds any role in
// the targeted organization.
func RequireOrgMember(orgID OrgIDFunc) Middleware {
	return RequireOrgRole(orgID)
}

// RequireOrgRole lets the request through when the caller's role in the
// targeted organization is one of roles. An empty roles list accepts any role.
func RequireOrgRole(orgID OrgIDFunc, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			org := orgID(r)
			if org == "" {
				WriteError(w, http.StatusBadRequest, "invalid_request", "organization is required")
				return
			}

			role, ok := claims.RoleIn(org)
			if !ok {
				WriteError(w, http.StatusForbidden, "forbidden", "not a member of this organization")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, role) {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSharedSecret guards machine-to-machine endpoints (the scheduler that
// drives the expiry sweep) with a static secret in header. An empty secret
// disables the endpoint.
func RequireSharedSecret(header, secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				WriteError(w, http.StatusNotFound, "not_found", "endpoint disabled")
				return
			}
			if !cryptox.SecretsEqual(r.Header.Get(header), secret) {
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
