// Package resilient decorates a domain.Store with a circuit breaker so a
// failing database is shed quickly instead of piling up timed-out requests.
package resilient

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

// Settings configures the breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// Store forwards every call to the wrapped store through one breaker.
type Store struct {
	next domain.Store
	cb   *gobreaker.CircuitBreaker[any]
}

// Wrap decorates next with a breaker that opens after FailureThreshold
// consecutive failures.
func Wrap(next domain.Store, s Settings) *Store {
	if s.Name == "" {
		s.Name = "store"
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 1
	}
	logger := logging.WithComponent("circuit_breaker")
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// a caller giving up is not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return &Store{next: next, cb: cb}
}

// State reports the breaker state (closed, half-open or open).
func (s *Store) State() string {
	return s.cb.State().String()
}

func call[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

type pair[A, B any] struct {
	a A
	b B
}

func call2[A, B any](cb *gobreaker.CircuitBreaker[any], fn func() (A, B, error)) (A, B, error) {
	p, err := call(cb, func() (pair[A, B], error) {
		a, b, err := fn()
		return pair[A, B]{a: a, b: b}, err
	})
	return p.a, p.b, err
}

func (s *Store) CountWorkouts(ctx context.Context, p query.Predicate) (int64, error) {
	return call(s.cb, func() (int64, error) { return s.next.CountWorkouts(ctx, p) })
}

func (s *Store) FindWorkouts(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Workout, error) {
	return call(s.cb, func() ([]domain.Workout, error) { return s.next.FindWorkouts(ctx, p, order, limit, offset) })
}

func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	return call(s.cb, func() (*domain.Workout, error) { return s.next.GetWorkout(ctx, id) })
}

func (s *Store) CountBookmarks(ctx context.Context, p query.Predicate) (int64, error) {
	return call(s.cb, func() (int64, error) { return s.next.CountBookmarks(ctx, p) })
}

func (s *Store) FindBookmarks(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Bookmark, error) {
	return call(s.cb, func() ([]domain.Bookmark, error) { return s.next.FindBookmarks(ctx, p, order, limit, offset) })
}

func (s *Store) FindBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, error) {
	return call(s.cb, func() (*domain.Bookmark, error) { return s.next.FindBookmark(ctx, userID, workoutID) })
}

func (s *Store) InsertBookmark(ctx context.Context, userID string, workoutID int64) (domain.Bookmark, bool, error) {
	return call2(s.cb, func() (domain.Bookmark, bool, error) { return s.next.InsertBookmark(ctx, userID, workoutID) })
}

func (s *Store) DeleteBookmark(ctx context.Context, userID string, workoutID int64) (bool, error) {
	return call(s.cb, func() (bool, error) { return s.next.DeleteBookmark(ctx, userID, workoutID) })
}

func (s *Store) ToggleBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, bool, error) {
	return call2(s.cb, func() (*domain.Bookmark, bool, error) { return s.next.ToggleBookmark(ctx, userID, workoutID) })
}

func (s *Store) CountWorkoutBookmarks(ctx context.Context, workoutID int64) (int64, error) {
	return call(s.cb, func() (int64, error) { return s.next.CountWorkoutBookmarks(ctx, workoutID) })
}

func (s *Store) DeleteUserBookmarks(ctx context.Context, userID string) (int64, error) {
	return call(s.cb, func() (int64, error) { return s.next.DeleteUserBookmarks(ctx, userID) })
}

func (s *Store) CountActivities(ctx context.Context, p query.Predicate) (int64, error) {
	return call(s.cb, func() (int64, error) { return s.next.CountActivities(ctx, p) })
}

func (s *Store) FindActivities(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Activity, error) {
	return call(s.cb, func() ([]domain.Activity, error) { return s.next.FindActivities(ctx, p, order, limit, offset) })
}

func (s *Store) InsertActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	return call(s.cb, func() (domain.Activity, error) { return s.next.InsertActivity(ctx, a) })
}

func (s *Store) UpdateActivity(ctx context.Context, id int64, userID string, patch domain.ActivityPatch, at time.Time) (*domain.Activity, error) {
	return call(s.cb, func() (*domain.Activity, error) { return s.next.UpdateActivity(ctx, id, userID, patch, at) })
}

func (s *Store) DeleteActivity(ctx context.Context, id int64, userID string) (bool, error) {
	return call(s.cb, func() (bool, error) { return s.next.DeleteActivity(ctx, id, userID) })
}

func (s *Store) AggregateActivities(ctx context.Context, userID string) ([]stats.GroupRow, error) {
	return call(s.cb, func() ([]stats.GroupRow, error) { return s.next.AggregateActivities(ctx, userID) })
}

func (s *Store) ActivityDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	return call(s.cb, func() ([]time.Time, error) { return s.next.ActivityDates(ctx, userID, since) })
}

var _ domain.Store = (*Store)(nil)
