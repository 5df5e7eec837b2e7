package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/fitness/internal/auth"
)

// NewRouter wires every endpoint behind the shared middleware stack. The
// health and metrics endpoints skip authentication and rate limiting.
func NewRouter(h *Handler, authCfg auth.Config, mw MiddlewareConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(mw.CORSOrigins))
	r.Use(auth.NewMiddleware(authCfg, auth.SkipOperationalPaths).Wrap)

	r.Get("/healthz", healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimit(mw.RateLimitRequests, mw.RateLimitWindow))

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", h.listWorkouts)
			r.Get("/{id}", h.getWorkout)
			r.Get("/{id}/bookmarks/count", h.workoutBookmarkCount)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.listBookmarks)
			r.Post("/", h.toggleBookmark)
			r.Delete("/", h.clearBookmarks)
			r.Get("/check", h.checkBookmark)
			r.Put("/{workoutId}", h.saveBookmark)
			r.Delete("/{workoutId}", h.removeBookmark)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", h.listActivities)
			r.Post("/", h.createActivity)
			r.Get("/recent", h.recentActivities)
			r.Get("/stats", h.activityStats)
			r.Patch("/{id}", h.updateActivity)
			r.Delete("/{id}", h.deleteActivity)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})
	return r
}
