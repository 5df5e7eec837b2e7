// Package api exposes the workout catalog, bookmarks and activity log over
// HTTP.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"example.com/fitness/internal/auth"
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// authorize returns the caller's claims when they hold one of scopes. It
// writes the 401/403 response itself otherwise.
func authorize(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, auth.ScopeWorkoutsRead); !ok {
		return
	}

	page, err := h.service.ListWorkouts(r.Context(), query.RawOptionsFromValues(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Workouts: mapViews(page.Items, toWorkoutView),
		Pagination: workoutPagination{
			PaginationView: paginationView(page.Pagination),
			TotalWorkouts:  page.Pagination.TotalCount,
		},
	})
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, auth.ScopeWorkoutsRead); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workout, err := h.service.GetWorkout(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) workoutBookmarkCount(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, auth.ScopeWorkoutsRead, auth.ScopeBookmarksRead); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	count, err := h.service.WorkoutBookmarkCount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkCountResponse{WorkoutID: id, Count: count})
}

func (h *Handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksRead, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}

	page, err := h.service.ListBookmarks(r.Context(), claims.Subject, query.RawOptionsFromValues(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListBookmarksResponse{
		Bookmarks: mapViews(page.Items, toBookmarkView),
		Pagination: bookmarkPagination{
			PaginationView: paginationView(page.Pagination),
			TotalBookmarks: page.Pagination.TotalCount,
		},
	})
}

func (h *Handler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}
	var req ToggleBookmarkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ToggleBookmark(r.Context(), claims.Subject, req.WorkoutID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleBookmarkResponse{
		Success:      result.Success,
		Action:       result.Action,
		IsBookmarked: result.IsBookmarked,
		Bookmark:     optionalBookmarkView(result.Bookmark),
	})
}

func (h *Handler) checkBookmark(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksRead, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("workoutId"))
	workoutID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || workoutID <= 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "workoutId must be a positive integer")
		return
	}

	status, err := h.service.IsWorkoutBookmarked(r.Context(), claims.Subject, workoutID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BookmarkStatusResponse{
		IsBookmarked: status.IsBookmarked,
		Bookmark:     optionalBookmarkView(status.Bookmark),
	})
}

func (h *Handler) saveBookmark(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "workoutId")
	if !ok {
		return
	}

	bookmark, created, err := h.service.SaveBookmark(r.Context(), claims.Subject, workoutID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toBookmarkView(bookmark))
}

func (h *Handler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "workoutId")
	if !ok {
		return
	}

	if err := h.service.RemoveBookmark(r.Context(), claims.Subject, workoutID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearBookmarks(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeBookmarksWrite)
	if !ok {
		return
	}

	deleted, err := h.service.ClearUserBookmarks(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearBookmarksResponse{Deleted: deleted})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	page, err := h.service.ListActivities(r.Context(), claims.Subject, query.RawOptionsFromValues(r.URL.Query()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Activities: mapViews(page.Items, toActivityView),
		Pagination: activityPagination{
			PaginationView:  paginationView(page.Pagination),
			TotalActivities: page.Pagination.TotalCount,
		},
	})
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}
	var req CreateActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), req.toDomain(claims.Subject))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(activity))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), id, claims.Subject, req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(activity))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteActivity(r.Context(), id, claims.Subject); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recentActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "days must be an integer")
			return
		}
		days = parsed
	}

	items, err := h.service.RecentActivities(r.Context(), claims.Subject, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecentActivitiesResponse{Activities: mapViews(items, toActivityView)})
}

func (h *Handler) activityStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite)
	if !ok {
		return
	}

	summary, err := h.service.GetUserStats(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if summary.CategoryStats == nil {
		summary.CategoryStats = []stats.CategoryStat{}
	}
	writeJSON(w, http.StatusOK, summary)
}
