package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ProductDesk/pkg/kit"
)

// APIPrefix is the second mount point of the catalog routes, so clients
// configured with a ".../api" base URL work against catalogd unchanged.
const APIPrefix = "/api"

const defaultRequestTimeout = 15 * time.Second

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// RequestTimeout bounds every request; zero means 15s.
	RequestTimeout time.Duration
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Service == "" {
		deps.Service = "catalog"
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(chimw.StripSlashes)

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	}
	r.Use(chimw.Timeout(deps.RequestTimeout))

	if deps.Registry != nil && deps.MetricsEnabled {
		r.With(kit.MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	routes := s.Routes()
	r.Mount(APIPrefix, routes)
	r.Mount("/", routes)
	return r
}
