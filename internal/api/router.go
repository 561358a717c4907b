package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mazzdev/pilotage/internal/auth"
	"github.com/mazzdev/pilotage/internal/metrics"
	"github.com/mazzdev/pilotage/internal/ratelimit"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users          UserStore
	TimeEntries    TimeEntryStore
	Planning       PlanningStore
	Shareholders   ShareholderStore
	Sessions       auth.SessionLookup
	LoginLimiter   *ratelimit.Limiter
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(slogRequestLogger)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// Handlers.
	authH := newAuthHandler(deps.Users, deps.Metrics)
	usersH := newUsersHandler(deps.Users, deps.Planning)
	entriesH := newTimeEntriesHandler(deps.TimeEntries, deps.Planning)
	planningH := newPlanningHandler(deps.Users, deps.Planning)
	shareholdersH := newShareholdersHandler(deps.Shareholders)
	navH := navHandler{}

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Observability.
	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{}))
		r.Get("/metrics/summary", deps.Metrics.SummaryHandler())
	}

	// Public (unauthenticated) routes.
	r.Group(func(pr chi.Router) {
		pr.Use(ratelimit.Middleware(deps.LoginLimiter, deps.Metrics.IncThrottleRejection))
		pr.Post("/api/login", authH.Login)
		pr.Post("/api/register", authH.Register)
	})

	// Session-authed routes.
	r.Group(func(ar chi.Router) {
		ar.Use(auth.SessionMiddleware(deps.Sessions))

		ar.Post("/api/logout", authH.Logout)
		ar.Get("/api/me", authH.Me)
		ar.Get("/api/nav/resolve", navH.Resolve)

		// User management.
		ar.Post("/api/user/create", usersH.Create)
		ar.Get("/api/user/list", usersH.List)
		ar.Put("/api/user/{id}/update", usersH.Update)
		ar.Delete("/api/user/{id}/delete", usersH.Delete)
		ar.Post("/api/user/change-role", usersH.ChangeRole)

		// Time tracking.
		ar.Get("/api/time-entries", entriesH.ListMonth)
		ar.Post("/api/time-entries", entriesH.Create)
		ar.Delete("/api/time-entries/{id}", entriesH.Delete)
		ar.Get("/api/time-entries/admin/all", entriesH.ListAllMonth)

		// Quota planning.
		ar.Get("/api/hours-planning/user/{userID}/year/{year}", planningH.YearView)
		ar.Post("/api/hours-planning/user/{userID}/month", planningH.Upsert)
		ar.Delete("/api/hours-planning/user/{userID}/month/{month}/year/{year}", planningH.Reset)

		// Shareholder registry.
		ar.Get("/api/actionnaire/list", shareholdersH.List)
		ar.Post("/api/actionnaire/create", shareholdersH.Create)
		ar.Put("/api/actionnaire/{id}/update", shareholdersH.Update)
		ar.Delete("/api/actionnaire/{id}/delete", shareholdersH.Delete)
	})

	return r
}
