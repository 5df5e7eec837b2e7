package domain

import (
	"context"
	"errors"
	"time"

	"example.com/fitness/internal/observability"
	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

const (
	// DefaultRecentDays is the look-back used when RecentActivities gets 0.
	DefaultRecentDays = 7
	// MaxRecentDays bounds the RecentActivities look-back.
	MaxRecentDays = 365
	// RecentActivitiesLimit caps the number of recent activities returned.
	RecentActivitiesLimit = 10
)

// Toggle actions reported by ToggleBookmark.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// ToggleResult describes the outcome of a bookmark toggle.
type ToggleResult struct {
	Success      bool
	Action       string
	IsBookmarked bool
	Bookmark     *Bookmark
}

// BookmarkStatus reports whether a user bookmarked a workout.
type BookmarkStatus struct {
	IsBookmarked bool
	Bookmark     *Bookmark
}

// Service runs the listing, statistics and mutation workflows against a
// Store.
type Service struct {
	workouts   WorkoutStore
	bookmarks  BookmarkStore
	activities ActivityStore
	clock      stats.Clock
}

// NewService constructs a Service. A nil clock reads the wall clock in UTC.
func NewService(store Store, clock stats.Clock) *Service {
	if clock == nil {
		clock = stats.SystemClock{Location: time.UTC}
	}
	return &Service{
		workouts:   store,
		bookmarks:  store,
		activities: store,
		clock:      clock,
	}
}

// ListWorkouts returns a page of the workout catalog.
func (s *Service) ListWorkouts(ctx context.Context, raw query.RawOptions) (query.Page[Workout], error) {
	const op = "ListWorkouts"
	spec, err := query.Normalize(query.ResourceWorkouts, raw)
	if err != nil {
		return query.Page[Workout]{}, fail(op, ValidationError(op, err))
	}
	return listPage[Workout](ctx, op, spec, "", s.workouts.CountWorkouts, s.workouts.FindWorkouts)
}

// ListBookmarks returns a page of the user's bookmarks with their workouts.
func (s *Service) ListBookmarks(ctx context.Context, userID string, raw query.RawOptions) (query.Page[Bookmark], error) {
	const op = "ListBookmarks"
	if userID == "" {
		return query.Page[Bookmark]{}, fail(op, ValidationError(op, errors.New("userId is required")))
	}
	spec, err := query.Normalize(query.ResourceBookmarks, raw)
	if err != nil {
		return query.Page[Bookmark]{}, fail(op, ValidationError(op, err))
	}
	return listPage[Bookmark](ctx, op, spec, userID, s.bookmarks.CountBookmarks, s.bookmarks.FindBookmarks)
}

// ListActivities returns a page of the user's logged activities.
func (s *Service) ListActivities(ctx context.Context, userID string, raw query.RawOptions) (query.Page[Activity], error) {
	const op = "ListActivities"
	if userID == "" {
		return query.Page[Activity]{}, fail(op, ValidationError(op, errors.New("userId is required")))
	}
	spec, err := query.Normalize(query.ResourceActivities, raw)
	if err != nil {
		return query.Page[Activity]{}, fail(op, ValidationError(op, err))
	}
	return listPage[Activity](ctx, op, spec, userID, s.activities.CountActivities, s.activities.FindActivities)
}

type countFunc func(context.Context, query.Predicate) (int64, error)

type findFunc[T any] func(context.Context, query.Predicate, []query.Order, int, int) ([]T, error)

// listPage composes the predicate for owner, counts the matches, fetches
// the requested window and assembles the page. A failure of either store
// call fails the whole page. Pages past the end skip the fetch.
func listPage[T any](ctx context.Context, op string, spec query.Spec, owner string, count countFunc, find findFunc[T]) (query.Page[T], error) {
	start := time.Now()
	defer func() { observability.ObserveList(string(spec.Resource), time.Since(start)) }()

	p := query.Compose(owner, spec)
	total, err := count(ctx, p)
	if err != nil {
		return query.Page[T]{}, fail(op, StoreError(op, err))
	}
	var items []T
	if offset := spec.Offset(); offset >= 0 && total > int64(offset) {
		items, err = find(ctx, p, spec.Order(), spec.Limit, offset)
		if err != nil {
			return query.Page[T]{}, fail(op, StoreError(op, err))
		}
	}
	return query.NewPage(items, total, spec), nil
}

// GetWorkout fetches a single workout.
func (s *Service) GetWorkout(ctx context.Context, id int64) (*Workout, error) {
	const op = "GetWorkout"
	if id <= 0 {
		return nil, fail(op, ValidationError(op, errors.New("workout id must be positive")))
	}
	w, err := s.workouts.GetWorkout(ctx, id)
	if err != nil {
		return nil, fail(op, StoreError(op, err))
	}
	if w == nil {
		return nil, fail(op, NotFoundError(op, "workout"))
	}
	return w, nil
}

// GetUserStats summarizes the user's whole activity history and computes the
// current daily streak.
func (s *Service) GetUserStats(ctx context.Context, userID string) (stats.UserStats, error) {
	const op = "GetUserStats"
	if userID == "" {
		return stats.UserStats{}, fail(op, ValidationError(op, errors.New("userId is required")))
	}
	start := time.Now()
	defer func() { observability.ObserveStats(time.Since(start)) }()

	groups, err := s.activities.AggregateActivities(ctx, userID)
	if err != nil {
		return stats.UserStats{}, fail(op, StoreError(op, err))
	}
	out := stats.FromGroups(groups)

	today := s.clock.Today()
	dates, err := s.activities.ActivityDates(ctx, userID, calendarDay(stats.WindowStart(today)))
	if err != nil {
		return stats.UserStats{}, fail(op, StoreError(op, err))
	}
	out.CurrentStreak = stats.CurrentStreak(today, dates)
	return out, nil
}

// ToggleBookmark removes the bookmark when present and creates it
// otherwise.
func (s *Service) ToggleBookmark(ctx context.Context, userID string, workoutID int64) (ToggleResult, error) {
	const op = "ToggleBookmark"
	if err := s.checkBookmarkTarget(ctx, op, userID, workoutID); err != nil {
		return ToggleResult{}, err
	}
	bookmark, added, err := s.bookmarks.ToggleBookmark(ctx, userID, workoutID)
	if err != nil {
		return ToggleResult{}, fail(op, StoreError(op, err))
	}
	result := ToggleResult{Success: true, Action: ActionRemoved, IsBookmarked: added}
	if added {
		result.Action = ActionAdded
		result.Bookmark = bookmark
	}
	observability.RecordBookmarkToggle(result.Action)
	return result, nil
}

// SaveBookmark creates the bookmark if it does not exist yet. The boolean
// is false when the workout was already bookmarked; the existing bookmark is
// returned in that case.
func (s *Service) SaveBookmark(ctx context.Context, userID string, workoutID int64) (Bookmark, bool, error) {
	const op = "SaveBookmark"
	if err := s.checkBookmarkTarget(ctx, op, userID, workoutID); err != nil {
		return Bookmark{}, false, err
	}
	b, created, err := s.bookmarks.InsertBookmark(ctx, userID, workoutID)
	if err != nil {
		return Bookmark{}, false, fail(op, StoreError(op, err))
	}
	return b, created, nil
}

// RemoveBookmark deletes a bookmark, failing with a not-found error when the
// workout was not bookmarked.
func (s *Service) RemoveBookmark(ctx context.Context, userID string, workoutID int64) error {
	const op = "RemoveBookmark"
	if err := validateBookmarkKey(op, userID, workoutID); err != nil {
		return fail(op, err)
	}
	deleted, err := s.bookmarks.DeleteBookmark(ctx, userID, workoutID)
	if err != nil {
		return fail(op, StoreError(op, err))
	}
	if !deleted {
		return fail(op, NotFoundError(op, "bookmark"))
	}
	return nil
}

// IsWorkoutBookmarked reports whether the user bookmarked the workout.
func (s *Service) IsWorkoutBookmarked(ctx context.Context, userID string, workoutID int64) (BookmarkStatus, error) {
	const op = "IsWorkoutBookmarked"
	if err := validateBookmarkKey(op, userID, workoutID); err != nil {
		return BookmarkStatus{}, fail(op, err)
	}
	b, err := s.bookmarks.FindBookmark(ctx, userID, workoutID)
	if err != nil {
		return BookmarkStatus{}, fail(op, StoreError(op, err))
	}
	return BookmarkStatus{IsBookmarked: b != nil, Bookmark: b}, nil
}

// WorkoutBookmarkCount returns how many users bookmarked a workout.
func (s *Service) WorkoutBookmarkCount(ctx context.Context, workoutID int64) (int64, error) {
	const op = "WorkoutBookmarkCount"
	if workoutID <= 0 {
		return 0, fail(op, ValidationError(op, errors.New("workoutId must be positive")))
	}
	n, err := s.bookmarks.CountWorkoutBookmarks(ctx, workoutID)
	if err != nil {
		return 0, fail(op, StoreError(op, err))
	}
	return n, nil
}

// ClearUserBookmarks removes every bookmark of a user and returns how many
// were deleted.
func (s *Service) ClearUserBookmarks(ctx context.Context, userID string) (int64, error) {
	const op = "ClearUserBookmarks"
	if userID == "" {
		return 0, fail(op, ValidationError(op, errors.New("userId is required")))
	}
	n, err := s.bookmarks.DeleteUserBookmarks(ctx, userID)
	if err != nil {
		return 0, fail(op, StoreError(op, err))
	}
	return n, nil
}

// CreateActivity logs an activity, applying the default category,
// difficulty and date (today) when omitted.
func (s *Service) CreateActivity(ctx context.Context, input NewActivity) (Activity, error) {
	const op = "CreateActivity"
	if err := input.validate(); err != nil {
		return Activity{}, fail(op, ValidationError(op, err))
	}

	now := time.Now().UTC()
	a := Activity{
		UserID:         input.UserID,
		ActivityName:   input.ActivityName,
		Description:    input.Description,
		Duration:       input.Duration,
		CaloriesBurned: input.CaloriesBurned,
		Category:       input.Category,
		Difficulty:     input.Difficulty,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if a.Category == "" {
		a.Category = DefaultActivityCategory
	}
	if a.Difficulty == "" {
		a.Difficulty = DefaultActivityDifficulty
	}
	if input.Date != nil {
		a.Date = calendarDay(*input.Date)
	} else {
		a.Date = calendarDay(s.clock.Today())
	}

	created, err := s.activities.InsertActivity(ctx, a)
	if err != nil {
		return Activity{}, fail(op, StoreError(op, err))
	}
	observability.RecordActivityLogged(created.CreatedAt)
	return created, nil
}

// UpdateActivity applies patch to an activity owned by userID.
func (s *Service) UpdateActivity(ctx context.Context, id int64, userID string, patch ActivityPatch) (Activity, error) {
	const op = "UpdateActivity"
	if err := validateActivityKey(op, id, userID); err != nil {
		return Activity{}, fail(op, err)
	}
	if patch.IsEmpty() {
		return Activity{}, fail(op, ValidationError(op, errors.New("no fields to update")))
	}
	if err := patch.validate(); err != nil {
		return Activity{}, fail(op, ValidationError(op, err))
	}
	updated, err := s.activities.UpdateActivity(ctx, id, userID, patch, time.Now().UTC())
	if err != nil {
		return Activity{}, fail(op, StoreError(op, err))
	}
	if updated == nil {
		return Activity{}, fail(op, NotFoundError(op, "activity"))
	}
	return *updated, nil
}

// DeleteActivity removes an activity owned by userID.
func (s *Service) DeleteActivity(ctx context.Context, id int64, userID string) error {
	const op = "DeleteActivity"
	if err := validateActivityKey(op, id, userID); err != nil {
		return fail(op, err)
	}
	deleted, err := s.activities.DeleteActivity(ctx, id, userID)
	if err != nil {
		return fail(op, StoreError(op, err))
	}
	if !deleted {
		return fail(op, NotFoundError(op, "activity"))
	}
	return nil
}

// RecentActivities returns up to RecentActivitiesLimit activities dated
// within the last days days, newest first. days == 0 means
// DefaultRecentDays.
func (s *Service) RecentActivities(ctx context.Context, userID string, days int) ([]Activity, error) {
	const op = "RecentActivities"
	if userID == "" {
		return nil, fail(op, ValidationError(op, errors.New("userId is required")))
	}
	switch {
	case days == 0:
		days = DefaultRecentDays
	case days < 0 || days > MaxRecentDays:
		return nil, fail(op, ValidationError(op, errors.New("days must be between 1 and 365")))
	}

	since := calendarDay(s.clock.Today()).AddDate(0, 0, -days)
	p := query.OwnedBy(userID).Where(query.FieldDate, query.OpGte, since)
	order := []query.Order{
		{Field: query.FieldDate, Direction: query.Desc},
		{Field: query.FieldCreatedAt, Direction: query.Desc},
		{Field: query.FieldID, Direction: query.Desc},
	}
	items, err := s.activities.FindActivities(ctx, p, order, RecentActivitiesLimit, 0)
	if err != nil {
		return nil, fail(op, StoreError(op, err))
	}
	if items == nil {
		items = []Activity{}
	}
	return items, nil
}

func (s *Service) checkBookmarkTarget(ctx context.Context, op, userID string, workoutID int64) error {
	if err := validateBookmarkKey(op, userID, workoutID); err != nil {
		return fail(op, err)
	}
	w, err := s.workouts.GetWorkout(ctx, workoutID)
	if err != nil {
		return fail(op, StoreError(op, err))
	}
	if w == nil {
		return fail(op, NotFoundError(op, "workout"))
	}
	return nil
}

func validateBookmarkKey(op, userID string, workoutID int64) error {
	if userID == "" {
		return ValidationError(op, errors.New("userId is required"))
	}
	if workoutID <= 0 {
		return ValidationError(op, errors.New("workoutId must be positive"))
	}
	return nil
}

func validateActivityKey(op string, id int64, userID string) error {
	if userID == "" {
		return ValidationError(op, errors.New("userId is required"))
	}
	if id <= 0 {
		return ValidationError(op, errors.New("activity id must be positive"))
	}
	return nil
}

// fail records the failure metric and returns err unchanged.
func fail(op string, err error) error {
	observability.RecordError(op, KindOf(err).String())
	return err
}
