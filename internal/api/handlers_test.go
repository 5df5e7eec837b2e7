package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/auth"
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/persistence/memory"
	"example.com/fitness/internal/stats"
)

var (
	testAuth  = auth.Config{Secret: "handler-secret", Issuer: "fitness.identity"}
	testToday = time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	allScopes = []string{
		auth.ScopeWorkoutsRead,
		auth.ScopeBookmarksRead, auth.ScopeBookmarksWrite,
		auth.ScopeActivitiesRead, auth.ScopeActivitiesWrite,
	}
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewSeededStore()
	svc := domain.NewService(store, stats.FixedClock(testToday))
	router := NewRouter(NewHandler(svc), testAuth, MiddlewareConfig{RateLimitWindow: time.Minute})
	return &testServer{t: t, router: router}
}

func token(t *testing.T, subject string, scopes ...string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    subject,
		"iss":    testAuth.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": scopes,
	}).SignedString([]byte(testAuth.Secret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthzSkipsAuth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequiresTokenAndScope(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/v1/workouts", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodPost, "/v1/activities", token(t, "user-1", auth.ScopeActivitiesRead), map[string]any{
		"activityName": "Run", "duration": 30, "caloriesBurned": 300,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"type":"forbidden","detail":"scope activities:write required"}`, rec.Body.String())
}

func TestListWorkoutsResponseShape(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", auth.ScopeWorkoutsRead)

	rec := srv.do(http.MethodGet, "/v1/workouts?limit=2&sortBy=rating&sortOrder=desc", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Workouts   []map[string]any `json:"workouts"`
		Pagination map[string]any   `json:"pagination"`
	}](t, rec)

	require.Len(t, body.Workouts, 2)
	require.GreaterOrEqual(t, body.Workouts[0]["rating"].(float64), body.Workouts[1]["rating"].(float64))
	require.EqualValues(t, 1, body.Pagination["currentPage"])
	require.EqualValues(t, 2, body.Pagination["limit"])
	require.Contains(t, body.Pagination, "totalWorkouts")
	require.Equal(t, true, body.Pagination["hasNextPage"])
	require.EqualValues(t, 2, body.Pagination["nextPage"])
	require.Nil(t, body.Pagination["prevPage"])
}

func TestListWorkoutsRejectsUnknownSort(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/v1/workouts?sortBy=password", token(t, "user-1", auth.ScopeWorkoutsRead), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation_failed")
}

func TestGetWorkoutNotFound(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", auth.ScopeWorkoutsRead)

	rec := srv.do(http.MethodGet, "/v1/workouts/999", bearer, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"type":"not_found"`)

	rec = srv.do(http.MethodGet, "/v1/workouts/abc", bearer, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleBookmarkTwice(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", allScopes...)

	rec := srv.do(http.MethodPost, "/v1/bookmarks", bearer, map[string]any{"workoutId": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[ToggleBookmarkResponse](t, rec)
	require.True(t, first.Success)
	require.Equal(t, domain.ActionAdded, first.Action)
	require.True(t, first.IsBookmarked)
	require.NotNil(t, first.Bookmark)

	rec = srv.do(http.MethodGet, "/v1/bookmarks/check?workoutId=1", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[BookmarkStatusResponse](t, rec).IsBookmarked)

	rec = srv.do(http.MethodGet, "/v1/workouts/1/bookmarks/count", bearer, nil)
	require.JSONEq(t, `{"workoutId":1,"count":1}`, rec.Body.String())

	rec = srv.do(http.MethodPost, "/v1/bookmarks", bearer, map[string]any{"workoutId": 1})
	second := decode[ToggleBookmarkResponse](t, rec)
	require.Equal(t, domain.ActionRemoved, second.Action)
	require.False(t, second.IsBookmarked)
}

func TestToggleBookmarkValidation(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", auth.ScopeBookmarksWrite)

	rec := srv.do(http.MethodPost, "/v1/bookmarks", bearer, map[string]any{"workoutId": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "workoutId is required")

	req := httptest.NewRequest(http.MethodPost, "/v1/bookmarks", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+bearer)
	out := httptest.NewRecorder()
	srv.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusBadRequest, out.Code)
	require.Contains(t, out.Body.String(), "invalid_request")

	rec = srv.do(http.MethodPost, "/v1/bookmarks", bearer, map[string]any{"workoutId": 404})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveRemoveAndClearBookmarks(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", allScopes...)

	rec := srv.do(http.MethodPut, "/v1/bookmarks/2", bearer, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = srv.do(http.MethodPut, "/v1/bookmarks/2", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(http.MethodPut, "/v1/bookmarks/3", bearer, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(http.MethodGet, "/v1/bookmarks", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Bookmarks  []BookmarkView `json:"bookmarks"`
		Pagination map[string]any `json:"pagination"`
	}](t, rec)
	require.Len(t, list.Bookmarks, 2)
	require.NotNil(t, list.Bookmarks[0].Workout)
	require.EqualValues(t, 2, list.Pagination["totalBookmarks"])

	rec = srv.do(http.MethodDelete, "/v1/bookmarks/2", bearer, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(http.MethodDelete, "/v1/bookmarks/2", bearer, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodDelete, "/v1/bookmarks", bearer, nil)
	require.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}

func TestActivityLifecycle(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", allScopes...)

	rec := srv.do(http.MethodPost, "/v1/activities", bearer, map[string]any{
		"activityName":   "Morning Run",
		"duration":       30,
		"caloriesBurned": 320,
		"category":       "Cardio",
		"date":           "2025-06-09",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ActivityView](t, rec)
	require.Equal(t, "user-1", created.UserID)
	require.Equal(t, "2025-06-09", created.Date)
	require.Equal(t, domain.DefaultActivityDifficulty, created.Difficulty)

	rec = srv.do(http.MethodPost, "/v1/activities", bearer, map[string]any{
		"activityName":   "Yoga",
		"duration":       45,
		"caloriesBurned": 150,
		"category":       "Flexibility",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "2025-06-10", decode[ActivityView](t, rec).Date)

	path := "/v1/activities/" + strconv.FormatInt(created.ID, 10)
	rec = srv.do(http.MethodPatch, path, bearer, map[string]any{"duration": 40})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 40, decode[ActivityView](t, rec).Duration)

	other := token(t, "user-2", allScopes...)
	rec = srv.do(http.MethodPatch, path, other, map[string]any{"duration": 50})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodGet, "/v1/activities/stats", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[stats.UserStats](t, rec)
	require.EqualValues(t, 2, summary.TotalActivities)
	require.EqualValues(t, 85, summary.TotalDuration)
	require.EqualValues(t, 470, summary.TotalCalories)
	require.Equal(t, 2, summary.CurrentStreak)
	require.Len(t, summary.CategoryStats, 2)

	rec = srv.do(http.MethodGet, "/v1/activities/recent?days=7", bearer, nil)
	recent := decode[RecentActivitiesResponse](t, rec)
	require.Len(t, recent.Activities, 2)
	require.Equal(t, "2025-06-10", recent.Activities[0].Date)

	rec = srv.do(http.MethodGet, "/v1/activities?category=Cardio", bearer, nil)
	list := decode[struct {
		Activities []ActivityView `json:"activities"`
		Pagination map[string]any `json:"pagination"`
	}](t, rec)
	require.Len(t, list.Activities, 1)
	require.EqualValues(t, 1, list.Pagination["totalActivities"])

	rec = srv.do(http.MethodDelete, path, bearer, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(http.MethodDelete, path, bearer, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateActivityValidation(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", auth.ScopeActivitiesWrite)

	cases := map[string]map[string]any{
		"missing name":     {"duration": 30, "caloriesBurned": 100},
		"zero duration":    {"activityName": "Run", "duration": 0, "caloriesBurned": 100},
		"missing calories": {"activityName": "Run", "duration": 30},
		"bad difficulty":   {"activityName": "Run", "duration": 30, "caloriesBurned": 1, "difficulty": "Brutal"},
		"bad date":         {"activityName": "Run", "duration": 30, "caloriesBurned": 1, "date": "10/06/2025"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(http.MethodPost, "/v1/activities", bearer, body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Contains(t, rec.Body.String(), "validation_failed")
		})
	}
}

func TestRecentActivitiesRejectsBadDays(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", auth.ScopeActivitiesRead)

	rec := srv.do(http.MethodGet, "/v1/activities/recent?days=abc", bearer, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(http.MethodGet, "/v1/activities/recent?days=1000", bearer, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	srv := newTestServer(t)
	bearer := token(t, "user-1", allScopes...)

	rec := srv.do(http.MethodGet, "/v1/nope", bearer, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(http.MethodPut, "/v1/workouts", bearer, nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	store := memory.NewSeededStore()
	svc := domain.NewService(store, stats.FixedClock(testToday))
	router := NewRouter(NewHandler(svc), testAuth, MiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	bearer := token(t, "user-1", auth.ScopeWorkoutsRead)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/v1/workouts", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
