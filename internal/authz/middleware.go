package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Middleware adapts the guard chain to chi handlers. The hosting layer stays
// in charge of routing; the middleware only turns decisions into responses.
type Middleware struct {
	Chain  *Chain
	Logger *slog.Logger
}

// Guard authorizes every call to the wrapped handler against the given route
// descriptor. Denied callers get 401 or 403 with a generic message; the full
// reason goes to the log and the audit trail only.
func (m Middleware) Guard(route Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := Request{
				Route:      route,
				Credential: bearerToken(r),
				Params:     requestParams(r),
			}
			decision, principal := m.Chain.Evaluate(r.Context(), req)
			if !decision.Allowed {
				switch decision.Kind {
				case DenyUnauthenticated:
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				default:
					httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient privilege")
				}
				return
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requestParams flattens chi URL params and query values into the string map
// the chain consumes. Path parameters win over query values of the same name.
func requestParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}
