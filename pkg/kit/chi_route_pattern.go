package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// UnmatchedRoute labels requests no route matched, so scans of random
// paths do not create one series each.
const UnmatchedRoute = "unmatched"

func ChiRoutePatternOrPath(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return r.URL.Path
	}
	if rp := rc.RoutePattern(); rp != "" && rp != "/*" {
		return rp
	}
	return UnmatchedRoute
}
