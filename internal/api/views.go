package api

import (
	"time"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/query"
)

// WorkoutView is the JSON shape of a catalog workout.
type WorkoutView struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Duration   string    `json:"duration"`
	Difficulty string    `json:"difficulty"`
	Calories   string    `json:"calories"`
	Rating     float64   `json:"rating"`
	Instructor string    `json:"instructor"`
	Thumbnail  string    `json:"thumbnail"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BookmarkView is a bookmark with its workout inlined when available.
type BookmarkView struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"userId"`
	WorkoutID int64        `json:"workoutId"`
	Workout   *WorkoutView `json:"workout,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ActivityView is the JSON shape of a logged activity. Date is a calendar
// day.
type ActivityView struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	ActivityName   string    `json:"activityName"`
	Description    string    `json:"description"`
	Duration       int       `json:"duration"`
	CaloriesBurned int       `json:"caloriesBurned"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	Notes          string    `json:"notes"`
	Date           string    `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PaginationView mirrors query.PaginationMeta. Each list response embeds it
// next to a resource specific total.
type PaginationView struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}

type workoutPagination struct {
	PaginationView
	TotalWorkouts int64 `json:"totalWorkouts"`
}

type bookmarkPagination struct {
	PaginationView
	TotalBookmarks int64 `json:"totalBookmarks"`
}

type activityPagination struct {
	PaginationView
	TotalActivities int64 `json:"totalActivities"`
}

// ListWorkoutsResponse is the body of GET /v1/workouts.
type ListWorkoutsResponse struct {
	Workouts   []WorkoutView     `json:"workouts"`
	Pagination workoutPagination `json:"pagination"`
}

// ListBookmarksResponse is the body of GET /v1/bookmarks.
type ListBookmarksResponse struct {
	Bookmarks  []BookmarkView     `json:"bookmarks"`
	Pagination bookmarkPagination `json:"pagination"`
}

// ListActivitiesResponse is the body of GET /v1/activities.
type ListActivitiesResponse struct {
	Activities []ActivityView     `json:"activities"`
	Pagination activityPagination `json:"pagination"`
}

// RecentActivitiesResponse is the body of GET /v1/activities/recent.
type RecentActivitiesResponse struct {
	Activities []ActivityView `json:"activities"`
}

// ToggleBookmarkResponse is the body of POST /v1/bookmarks.
type ToggleBookmarkResponse struct {
	Success      bool          `json:"success"`
	Action       string        `json:"action"`
	IsBookmarked bool          `json:"isBookmarked"`
	Bookmark     *BookmarkView `json:"bookmark,omitempty"`
}

// BookmarkStatusResponse is the body of GET /v1/bookmarks/check.
type BookmarkStatusResponse struct {
	IsBookmarked bool          `json:"isBookmarked"`
	Bookmark     *BookmarkView `json:"bookmark"`
}

// BookmarkCountResponse is the body of GET /v1/workouts/{id}/bookmarks/count.
type BookmarkCountResponse struct {
	WorkoutID int64 `json:"workoutId"`
	Count     int64 `json:"count"`
}

// ClearBookmarksResponse is the body of DELETE /v1/bookmarks.
type ClearBookmarksResponse struct {
	Deleted int64 `json:"deleted"`
}

// ToggleBookmarkRequest is the payload for POST /v1/bookmarks.
type ToggleBookmarkRequest struct {
	WorkoutID int64 `json:"workoutId" validate:"required,gt=0"`
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	ActivityName   string `json:"activityName" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
	Duration       int    `json:"duration" validate:"required,gt=0"`
	CaloriesBurned *int   `json:"caloriesBurned" validate:"required,gte=0"`
	Category       string `json:"category" validate:"max=100"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=Easy Moderate Hard"`
	Notes          string `json:"notes" validate:"max=2000"`
	Date           string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateActivityRequest is the payload for PATCH /v1/activities/{id}. Absent
// fields are left unchanged.
type UpdateActivityRequest struct {
	ActivityName   *string `json:"activityName" validate:"omitempty,min=1,max=200"`
	Description    *string `json:"description" validate:"omitempty,max=2000"`
	Duration       *int    `json:"duration" validate:"omitempty,gt=0"`
	CaloriesBurned *int    `json:"caloriesBurned" validate:"omitempty,gte=0"`
	Category       *string `json:"category" validate:"omitempty,max=100"`
	Difficulty     *string `json:"difficulty" validate:"omitempty,oneof=Easy Moderate Hard"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	Date           *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r CreateActivityRequest) toDomain(userID string) domain.NewActivity {
	in := domain.NewActivity{
		UserID:       userID,
		ActivityName: r.ActivityName,
		Description:  r.Description,
		Duration:     r.Duration,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Notes:        r.Notes,
		Date:         parseDay(r.Date),
	}
	if r.CaloriesBurned != nil {
		in.CaloriesBurned = *r.CaloriesBurned
	}
	return in
}

func (r UpdateActivityRequest) toDomain() domain.ActivityPatch {
	patch := domain.ActivityPatch{
		ActivityName:   r.ActivityName,
		Description:    r.Description,
		Duration:       r.Duration,
		CaloriesBurned: r.CaloriesBurned,
		Category:       r.Category,
		Difficulty:     r.Difficulty,
		Notes:          r.Notes,
	}
	if r.Date != nil {
		patch.Date = parseDay(*r.Date)
	}
	return patch
}

// parseDay reads a date already checked by the datetime validator.
func parseDay(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	day, err := time.Parse(query.DateLayout, raw)
	if err != nil {
		return nil
	}
	return &day
}

func toWorkoutView(w domain.Workout) WorkoutView {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return WorkoutView{
		ID:         w.ID,
		Title:      w.Title,
		Category:   w.Category,
		Duration:   w.Duration,
		Difficulty: w.Difficulty,
		Calories:   w.Calories,
		Rating:     w.Rating,
		Instructor: w.Instructor,
		Thumbnail:  w.Thumbnail,
		Tags:       tags,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func toBookmarkView(b domain.Bookmark) BookmarkView {
	view := BookmarkView{
		ID:        b.ID,
		UserID:    b.UserID,
		WorkoutID: b.WorkoutID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Workout != nil {
		w := toWorkoutView(*b.Workout)
		view.Workout = &w
	}
	return view
}

func optionalBookmarkView(b *domain.Bookmark) *BookmarkView {
	if b == nil {
		return nil
	}
	view := toBookmarkView(*b)
	return &view
}

func toActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:             a.ID,
		UserID:         a.UserID,
		ActivityName:   a.ActivityName,
		Description:    a.Description,
		Duration:       a.Duration,
		CaloriesBurned: a.CaloriesBurned,
		Category:       a.Category,
		Difficulty:     a.Difficulty,
		Notes:          a.Notes,
		Date:           a.Date.Format(query.DateLayout),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func paginationView(m query.PaginationMeta) PaginationView {
	return PaginationView{
		CurrentPage: m.CurrentPage,
		TotalPages:  m.TotalPages,
		Limit:       m.Limit,
		HasNextPage: m.HasNextPage,
		HasPrevPage: m.HasPrevPage,
		NextPage:    m.NextPage,
		PrevPage:    m.PrevPage,
	}
}

func mapViews[T, V any](items []T, view func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}
