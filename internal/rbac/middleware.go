package rbac

import (
	"log/slog"
	"net/http"

	"github.com/pelita-edu/pelita/internal/platform/httpx"
	"github.com/pelita-edu/pelita/internal/shared"
)

// Allowed is the authorization predicate: it reports whether the principal's
// permission snapshot satisfies the required permission. This is the only
// place the wildcard sentinel is honoured, so every gate call site inherits
// consistent wildcard handling.
func Allowed(p shared.Principal, required Permission) bool {
	if !p.Authenticated() {
		return false
	}
	if required == "" {
		return true
	}
	for _, held := range p.Permissions {
		if held == string(PermissionAll) || held == string(required) {
			return true
		}
	}
	return false
}

// Gate wires permission checks in front of HTTP handlers. It evaluates the
// session principal before the wrapped handler runs, so a denied request
// never executes any handler side effect.
type Gate struct {
	Logger *slog.Logger
	// ExposeRequirement controls whether a 403 names the missing permission.
	// Off by default: the requirement itself can be sensitive.
	ExposeRequirement bool
}

// RequireAuth admits any authenticated principal.
func (g Gate) RequireAuth() func(http.Handler) http.Handler {
	return g.Require("")
}

// Require admits principals holding the given permission (or the wildcard).
// Anonymous requests get 401, authenticated ones without the permission 403;
// the two are never conflated.
func (g Gate) Require(required Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := g.principal(r)
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !Allowed(principal, required) {
				if g.Logger != nil {
					g.Logger.Warn("permission denied",
						slog.Int64("user_id", principal.UserID),
						slog.String("path", r.URL.Path))
				}
				if g.ExposeRequirement {
					httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission: "+string(required))
					return
				}
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// principal resolves the session principal, failing closed: a missing or
// anonymous session yields (zero, false).
func (g Gate) principal(r *http.Request) (shared.Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return shared.Principal{}, false
	}
	p := sess.Principal()
	if !p.Authenticated() {
		return shared.Principal{}, false
	}
	return p, true
}
