package domain

import (
	"context"
	"time"

	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

// WorkoutStore reads the workout catalog.
type WorkoutStore interface {
	CountWorkouts(ctx context.Context, p query.Predicate) (int64, error)
	FindWorkouts(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]Workout, error)
	// GetWorkout returns nil without error when the workout does not exist.
	GetWorkout(ctx context.Context, id int64) (*Workout, error)
}

// BookmarkStore persists bookmarks. FindBookmarks joins each bookmark's
// workout.
type BookmarkStore interface {
	CountBookmarks(ctx context.Context, p query.Predicate) (int64, error)
	FindBookmarks(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]Bookmark, error)
	FindBookmark(ctx context.Context, userID string, workoutID int64) (*Bookmark, error)
	// InsertBookmark returns the existing bookmark and false when the pair is
	// already bookmarked.
	InsertBookmark(ctx context.Context, userID string, workoutID int64) (Bookmark, bool, error)
	DeleteBookmark(ctx context.Context, userID string, workoutID int64) (bool, error)
	// ToggleBookmark atomically removes the bookmark when present and creates
	// it otherwise. It reports whether the bookmark now exists; the bookmark is
	// returned only when it was created.
	ToggleBookmark(ctx context.Context, userID string, workoutID int64) (*Bookmark, bool, error)
	CountWorkoutBookmarks(ctx context.Context, workoutID int64) (int64, error)
	DeleteUserBookmarks(ctx context.Context, userID string) (int64, error)
}

// ActivityStore persists logged activities.
type ActivityStore interface {
	CountActivities(ctx context.Context, p query.Predicate) (int64, error)
	FindActivities(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]Activity, error)
	// InsertActivity stores a and returns it with its assigned ID.
	InsertActivity(ctx context.Context, a Activity) (Activity, error)
	// UpdateActivity returns nil without error when no activity with id is
	// owned by userID.
	UpdateActivity(ctx context.Context, id int64, userID string, patch ActivityPatch, at time.Time) (*Activity, error)
	DeleteActivity(ctx context.Context, id int64, userID string) (bool, error)
	// AggregateActivities groups all of a user's activities by category.
	AggregateActivities(ctx context.Context, userID string) ([]stats.GroupRow, error)
	// ActivityDates returns the distinct activity dates on or after since.
	ActivityDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
}

// Store bundles every collaborator the Service needs.
type Store interface {
	WorkoutStore
	BookmarkStore
	ActivityStore
}
