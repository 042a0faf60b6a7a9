package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// CircuitStater reports the state of the upstream circuit breaker.
type CircuitStater interface {
	State() string
}

// Deps is everything the router serves. Nil services disable their routes
// with 503.
type Deps struct {
	Auth    *service.AuthService
	Boards  *service.BoardSet
	Admin   *service.AdminService
	Lookups *service.LookupService
	Metrics *observability.Metrics
	Circuit CircuitStater

	SessionBackend   string
	TracingEnabled   bool
	PermissionHeader bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Deps, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps.Auth, deps.Circuit, logger))
	r.Get("/readyz", readyzHandler())
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if deps.Auth == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "session service unavailable")
			}))
			return
		}

		// Session
		r.Post("/session", signInHandler(deps.Auth, logger))
		r.Get("/session", currentSessionHandler(deps.Auth))
		r.Delete("/session", signOutHandler(deps.Auth, logger))
		r.Get("/navigation", navigationHandler(deps.Auth))
		r.Get("/diagnostics", diagnosticsHandler(deps))

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(deps.Auth, logger))

			if deps.Boards != nil {
				r.Route("/screens/{screen}", func(r chi.Router) {
					r.Get("/requests", listRequestsHandler(deps.Boards, logger))
					r.Post("/requests/{id}/actions/{action}", performActionHandler(deps.Boards, logger))
					r.Put("/requests/{id}", editRequestHandler(deps.Boards, logger))
					r.Post("/requests/{id}/manual-approval", manualApprovalHandler(deps.Boards, logger))
					r.Get("/requests/{id}/history", historyHandler(deps.Boards, logger))
					r.Get("/requests/{id}/vendors", matchingVendorsHandler(deps.Boards, logger))
					r.Get("/requests/{id}/comments", commentsHandler(deps.Boards, logger))
					r.Get("/requests/{id}/print", printHandler(deps.Boards, logger))
					r.Post("/selection", selectAllHandler(deps.Boards, logger))
					r.Post("/selection/send-to-ceo", sendToCEOHandler(deps.Boards, logger))
					r.Post("/selection/{id}", toggleSelectionHandler(deps.Boards, logger))
				})
			}

			if deps.Admin != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/roles", listRolesHandler(deps.Admin, logger))
					r.Post("/roles", createRoleHandler(deps.Admin, logger))
					r.Get("/roles/{id}", getRoleHandler(deps.Admin, logger))
					r.Put("/roles/{id}", updateRoleHandler(deps.Admin, logger))
					r.Delete("/roles/{id}", deleteRoleHandler(deps.Admin, logger))

					r.Get("/users", listUsersHandler(deps.Admin, logger))
					r.Post("/users", createUserHandler(deps.Admin, logger))
					r.Get("/users/{id}", getUserHandler(deps.Admin, logger))
					r.Put("/users/{id}", updateUserHandler(deps.Admin, logger))
					r.Delete("/users/{id}", deleteUserHandler(deps.Admin, logger))

					r.Get("/tabs", listTabsHandler(deps.Admin, logger))
					r.Post("/tabs", createTabHandler(deps.Admin, logger))
					r.Put("/tabs/{id}", updateTabHandler(deps.Admin, logger))
					r.Delete("/tabs/{id}", deleteTabHandler(deps.Admin, logger))
				})
			}

			if deps.Lookups != nil {
				r.Get("/lookups/{kind}", lookupHandler(deps.Lookups, logger))
			}
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(authSvc *service.AuthService, circuit CircuitStater, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "dashboard-bff", Status: "healthy", LastChecked: now},
		}

		if authSvc != nil {
			start := time.Now()
			checked, err := authSvc.CheckUpstream(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			switch {
			case err != nil:
				logger.Warn("healthz: upstream unreachable", zap.Error(err))
				status = "degraded"
			case !checked:
				status = "unknown"
			}
			services = append(services, domain.ServiceHealth{
				Name: "shopboard-api", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}
		if circuit != nil && circuit.State() == "open" {
			services = append(services, domain.ServiceHealth{
				Name: "circuit-breaker", Status: "degraded", LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func diagnosticsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := deps.Metrics.Snapshot()
		snapshot.CircuitState = "disabled"
		if deps.Circuit != nil {
			snapshot.CircuitState = deps.Circuit.State()
		}
		snapshot.SessionPresent = deps.Auth.Current().Authenticated
		snapshot.SessionBackend = deps.SessionBackend
		snapshot.TracingEnabled = deps.TracingEnabled
		snapshot.PermissionHeader = deps.PermissionHeader
		writeJSON(w, http.StatusOK, snapshot)
	}
}
