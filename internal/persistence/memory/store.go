// Package memory provides an in-process implementation of domain.Store for
// local development and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

// Store keeps workouts, bookmarks and activities in maps guarded by a single
// lock. Predicates are evaluated with query.Predicate.Matches.
type Store struct {
	mu         sync.RWMutex
	workouts   map[int64]domain.Workout
	bookmarks  map[int64]domain.Bookmark
	activities map[int64]domain.Activity
	nextID     int64
	now        func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		workouts:   make(map[int64]domain.Workout),
		bookmarks:  make(map[int64]domain.Bookmark),
		activities: make(map[int64]domain.Activity),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AddWorkout inserts a catalog entry, assigning an ID and timestamps when
// missing.
func (s *Store) AddWorkout(w domain.Workout) domain.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == 0 {
		w.ID = s.allocID()
	} else if w.ID > s.nextID {
		s.nextID = w.ID
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}
	w.Tags = slices.Clone(w.Tags)
	s.workouts[w.ID] = w
	return w
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// CountWorkouts implements domain.WorkoutStore.
func (s *Store) CountWorkouts(ctx context.Context, p query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(matching(s.workouts, p, workoutRecord))), nil
}

// FindWorkouts implements domain.WorkoutStore.
func (s *Store) FindWorkouts(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return window(matching(s.workouts, p, workoutRecord), order, limit, offset, workoutRecord), nil
}

// GetWorkout implements domain.WorkoutStore.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// CountBookmarks implements domain.BookmarkStore.
func (s *Store) CountBookmarks(ctx context.Context, p query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(matching(s.bookmarks, p, bookmarkRecord))), nil
}

// FindBookmarks implements domain.BookmarkStore.
func (s *Store) FindBookmarks(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	page := window(matching(s.bookmarks, p, bookmarkRecord), order, limit, offset, bookmarkRecord)
	for i := range page {
		if w, ok := s.workouts[page[i].WorkoutID]; ok {
			page[i].Workout = &w
		}
	}
	return page, nil
}

// FindBookmark implements domain.BookmarkStore.
func (s *Store) FindBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.findBookmarkLocked(userID, workoutID)
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) findBookmarkLocked(userID string, workoutID int64) (domain.Bookmark, bool) {
	for _, b := range s.bookmarks {
		if b.UserID == userID && b.WorkoutID == workoutID {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

// InsertBookmark implements domain.BookmarkStore.
func (s *Store) InsertBookmark(ctx context.Context, userID string, workoutID int64) (domain.Bookmark, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bookmark{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.findBookmarkLocked(userID, workoutID); ok {
		return existing, false, nil
	}
	return s.insertBookmarkLocked(userID, workoutID), true, nil
}

func (s *Store) insertBookmarkLocked(userID string, workoutID int64) domain.Bookmark {
	now := s.now()
	b := domain.Bookmark{
		ID:        s.allocID(),
		UserID:    userID,
		WorkoutID: workoutID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.bookmarks[b.ID] = b
	return b
}

// DeleteBookmark implements domain.BookmarkStore.
func (s *Store) DeleteBookmark(ctx context.Context, userID string, workoutID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.findBookmarkLocked(userID, workoutID)
	if !ok {
		return false, nil
	}
	delete(s.bookmarks, existing.ID)
	return true, nil
}

// ToggleBookmark implements domain.BookmarkStore. The check and the write
// happen under one write lock.
func (s *Store) ToggleBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.findBookmarkLocked(userID, workoutID); ok {
		delete(s.bookmarks, existing.ID)
		return nil, false, nil
	}
	b := s.insertBookmarkLocked(userID, workoutID)
	return &b, true, nil
}

// CountWorkoutBookmarks implements domain.BookmarkStore.
func (s *Store) CountWorkoutBookmarks(ctx context.Context, workoutID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, b := range s.bookmarks {
		if b.WorkoutID == workoutID {
			n++
		}
	}
	return n, nil
}

// DeleteUserBookmarks implements domain.BookmarkStore.
func (s *Store) DeleteUserBookmarks(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.bookmarks {
		if b.UserID == userID {
			delete(s.bookmarks, id)
			n++
		}
	}
	return n, nil
}

// CountActivities implements domain.ActivityStore.
func (s *Store) CountActivities(ctx context.Context, p query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(matching(s.activities, p, activityRecord))), nil
}

// FindActivities implements domain.ActivityStore.
func (s *Store) FindActivities(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return window(matching(s.activities, p, activityRecord), order, limit, offset, activityRecord), nil
}

// InsertActivity implements domain.ActivityStore.
func (s *Store) InsertActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Activity{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.allocID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	s.activities[a.ID] = a
	return a, nil
}

// UpdateActivity implements domain.ActivityStore.
func (s *Store) UpdateActivity(ctx context.Context, id int64, userID string, patch domain.ActivityPatch, at time.Time) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	a = patch.Apply(a)
	a.UpdatedAt = at
	s.activities[id] = a
	return &a, nil
}

// DeleteActivity implements domain.ActivityStore.
func (s *Store) DeleteActivity(ctx context.Context, id int64, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(s.activities, id)
	return true, nil
}

// AggregateActivities implements domain.ActivityStore.
func (s *Store) AggregateActivities(ctx context.Context, userID string) ([]stats.GroupRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []stats.Entry
	for _, a := range s.activities {
		if a.UserID != userID {
			continue
		}
		entries = append(entries, stats.Entry{
			Category: a.Category,
			Duration: int64(a.Duration),
			Calories: int64(a.CaloriesBurned),
			Date:     a.Date,
		})
	}
	summary := stats.Aggregate(entries)

	rows := make([]stats.GroupRow, 0, len(summary.CategoryStats))
	for _, cs := range summary.CategoryStats {
		rows = append(rows, stats.GroupRow{
			Category:      cs.Category,
			Count:         cs.Count,
			TotalDuration: cs.TotalDuration,
			TotalCalories: cs.TotalCalories,
		})
	}
	return rows, nil
}

// ActivityDates implements domain.ActivityStore.
func (s *Store) ActivityDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, a := range s.activities {
		if a.UserID != userID || a.Date.Before(since) {
			continue
		}
		if _, dup := seen[a.Date]; dup {
			continue
		}
		seen[a.Date] = struct{}{}
		dates = append(dates, a.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

func matching[T any](rows map[int64]T, p query.Predicate, rec func(T) query.Record) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if p.Matches(rec(row)) {
			out = append(out, row)
		}
	}
	return out
}

// window sorts rows by order and returns the [offset, offset+limit) slice.
func window[T any](rows []T, order []query.Order, limit, offset int, rec func(T) query.Record) []T {
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rec(rows[i]), rec(rows[j]), order)
	})
	if offset < 0 || offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return slices.Clone(rows[offset:end])
}

func less(a, b query.Record, order []query.Order) bool {
	for _, o := range order {
		av, _ := a.Value(o.Field)
		bv, _ := b.Value(o.Field)
		cmp, ok := query.Compare(av, bv)
		if !ok || cmp == 0 {
			continue
		}
		if o.Direction == query.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

var _ domain.Store = (*Store)(nil)
