// Package postgres implements domain.Store on PostgreSQL. Every mutation
// writes its integration event to the outbox table in the same transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/query"
	"example.com/fitness/internal/stats"
)

// Store provides Postgres-backed persistence for workouts, bookmarks and
// activities.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ domain.Store = (*Store)(nil)

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

const workoutSelect = `SELECT w.id, w.title, w.category, w.duration, w.difficulty, w.calories,
        w.rating::float8, w.instructor, w.thumbnail, w.tags, w.created_at, w.updated_at
        FROM workout w`

const bookmarkSelect = `SELECT b.id, b.user_id, b.workout_id, b.created_at, b.updated_at,
        w.id, w.title, w.category, w.duration, w.difficulty, w.calories,
        w.rating::float8, w.instructor, w.thumbnail, w.tags, w.created_at, w.updated_at
        FROM bookmark b JOIN workout w ON w.id = b.workout_id`

const activitySelect = `SELECT a.id, a.user_id, a.activity_name, a.description, a.duration,
        a.calories_burned, a.category, a.difficulty, a.notes, a.date, a.created_at, a.updated_at
        FROM user_activity a`

func scanWorkout(row pgx.CollectableRow) (domain.Workout, error) {
	var w domain.Workout
	err := row.Scan(&w.ID, &w.Title, &w.Category, &w.Duration, &w.Difficulty, &w.Calories,
		&w.Rating, &w.Instructor, &w.Thumbnail, &w.Tags, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func scanBookmark(row pgx.CollectableRow) (domain.Bookmark, error) {
	var (
		b domain.Bookmark
		w domain.Workout
	)
	err := row.Scan(&b.ID, &b.UserID, &b.WorkoutID, &b.CreatedAt, &b.UpdatedAt,
		&w.ID, &w.Title, &w.Category, &w.Duration, &w.Difficulty, &w.Calories,
		&w.Rating, &w.Instructor, &w.Thumbnail, &w.Tags, &w.CreatedAt, &w.UpdatedAt)
	b.Workout = &w
	return b, err
}

func scanActivity(row pgx.CollectableRow) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.ActivityName, &a.Description, &a.Duration,
		&a.CaloriesBurned, &a.Category, &a.Difficulty, &a.Notes, &a.Date, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// querier is satisfied by the pool and by transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func count(ctx context.Context, q querier, from string, cs columnSet, p query.Predicate) (int64, error) {
	var params args
	where, err := cs.where(p, &params)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+from+where, params...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func find[T any](ctx context.Context, q querier, base string, cs columnSet, p query.Predicate, order []query.Order, limit, offset int, scan func(pgx.CollectableRow) (T, error)) ([]T, error) {
	var params args
	where, err := cs.where(p, &params)
	if err != nil {
		return nil, err
	}
	orderBy, err := cs.orderBy(order)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, base+where+orderBy+window(limit, offset, &params), params...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// optional turns pgx.ErrNoRows into a nil result.
func optional[T any](v T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// inTx runs fn in a transaction that is committed when fn returns nil.
func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockBookmark serializes every mutation of one (user, workout) pair until
// the surrounding transaction ends.
func lockBookmark(ctx context.Context, tx pgx.Tx, userID string, workoutID int64) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, userID, workoutID); err != nil {
		return fmt.Errorf("lock bookmark: %w", err)
	}
	return nil
}

// CountWorkouts implements domain.WorkoutStore.
func (s *Store) CountWorkouts(ctx context.Context, p query.Predicate) (int64, error) {
	return count(ctx, s.pool, "workout w", workoutColumns, p)
}

// FindWorkouts implements domain.WorkoutStore.
func (s *Store) FindWorkouts(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Workout, error) {
	return find(ctx, s.pool, workoutSelect, workoutColumns, p, order, limit, offset, scanWorkout)
}

// GetWorkout implements domain.WorkoutStore.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	rows, err := s.pool.Query(ctx, workoutSelect+" WHERE w.id = $1", id)
	if err != nil {
		return nil, err
	}
	w, err := pgx.CollectExactlyOneRow(rows, scanWorkout)
	return optional(w, err)
}

// InsertWorkout adds a catalog entry. The catalog is otherwise read-only.
func (s *Store) InsertWorkout(ctx context.Context, w domain.Workout) (domain.Workout, error) {
	now := s.now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	const stmt = `INSERT INTO workout (title, category, duration, difficulty, calories, rating, instructor, thumbnail, tags, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`
	err := s.pool.QueryRow(ctx, stmt, w.Title, w.Category, w.Duration, w.Difficulty, w.Calories,
		w.Rating, w.Instructor, w.Thumbnail, w.Tags, w.CreatedAt, w.UpdatedAt).Scan(&w.ID)
	return w, err
}

// CountBookmarks implements domain.BookmarkStore.
func (s *Store) CountBookmarks(ctx context.Context, p query.Predicate) (int64, error) {
	return count(ctx, s.pool, "bookmark b", bookmarkColumns, p)
}

// FindBookmarks implements domain.BookmarkStore.
func (s *Store) FindBookmarks(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Bookmark, error) {
	return find(ctx, s.pool, bookmarkSelect, bookmarkColumns, p, order, limit, offset, scanBookmark)
}

// FindBookmark implements domain.BookmarkStore.
func (s *Store) FindBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, error) {
	return findBookmark(ctx, s.pool, userID, workoutID)
}

func findBookmark(ctx context.Context, q querier, userID string, workoutID int64) (*domain.Bookmark, error) {
	rows, err := q.Query(ctx, bookmarkSelect+" WHERE b.user_id = $1 AND b.workout_id = $2", userID, workoutID)
	if err != nil {
		return nil, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBookmark)
	return optional(b, err)
}

// InsertBookmark implements domain.BookmarkStore.
func (s *Store) InsertBookmark(ctx context.Context, userID string, workoutID int64) (domain.Bookmark, bool, error) {
	var (
		out     domain.Bookmark
		created bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockBookmark(ctx, tx, userID, workoutID); err != nil {
			return err
		}
		now := s.now()
		const stmt = `INSERT INTO bookmark (user_id, workout_id, created_at, updated_at) VALUES ($1, $2, $3, $3)
            ON CONFLICT ON CONSTRAINT bookmark_user_workout_key DO NOTHING RETURNING id`
		var id int64
		err := tx.QueryRow(ctx, stmt, userID, workoutID, now).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return err
		default:
			created = true
			if err := insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionAdded, now); err != nil {
				return err
			}
		}

		b, err := findBookmark(ctx, tx, userID, workoutID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("bookmark %s/%d vanished after insert", userID, workoutID)
		}
		out = *b
		return nil
	})
	if err != nil {
		return domain.Bookmark{}, false, err
	}
	return out, created, nil
}

// DeleteBookmark implements domain.BookmarkStore.
func (s *Store) DeleteBookmark(ctx context.Context, userID string, workoutID int64) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockBookmark(ctx, tx, userID, workoutID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM bookmark WHERE user_id = $1 AND workout_id = $2`, userID, workoutID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		if !deleted {
			return nil
		}
		return insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionRemoved, s.now())
	})
	return deleted, err
}

// ToggleBookmark implements domain.BookmarkStore. The transaction scoped
// advisory lock it shares with InsertBookmark and DeleteBookmark serializes
// every write to the (user, workout) pair.
func (s *Store) ToggleBookmark(ctx context.Context, userID string, workoutID int64) (*domain.Bookmark, bool, error) {
	var (
		out   *domain.Bookmark
		added bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockBookmark(ctx, tx, userID, workoutID); err != nil {
			return err
		}

		now := s.now()
		tag, err := tx.Exec(ctx, `DELETE FROM bookmark WHERE user_id = $1 AND workout_id = $2`, userID, workoutID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionRemoved, now)
		}

		// a conflicting row committed outside the lock is present, so remove it
		b := domain.Bookmark{UserID: userID, WorkoutID: workoutID, CreatedAt: now, UpdatedAt: now}
		const stmt = `INSERT INTO bookmark (user_id, workout_id, created_at, updated_at) VALUES ($1, $2, $3, $3)
            ON CONFLICT ON CONSTRAINT bookmark_user_workout_key DO NOTHING RETURNING id`
		err = tx.QueryRow(ctx, stmt, userID, workoutID, now).Scan(&b.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := tx.Exec(ctx, `DELETE FROM bookmark WHERE user_id = $1 AND workout_id = $2`, userID, workoutID); err != nil {
				return err
			}
			return insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionRemoved, now)
		}
		if err != nil {
			return err
		}
		out, added = &b, true
		return insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionAdded, now)
	})
	if err != nil {
		return nil, false, err
	}
	return out, added, nil
}

// CountWorkoutBookmarks implements domain.BookmarkStore.
func (s *Store) CountWorkoutBookmarks(ctx context.Context, workoutID int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookmark WHERE workout_id = $1`, workoutID).Scan(&n)
	return n, err
}

// DeleteUserBookmarks implements domain.BookmarkStore. One removal event is
// written per deleted bookmark.
func (s *Store) DeleteUserBookmarks(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `DELETE FROM bookmark WHERE user_id = $1 RETURNING workout_id`, userID)
		if err != nil {
			return err
		}
		workoutIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return err
		}
		now := s.now()
		for _, workoutID := range workoutIDs {
			if err := insertBookmarkEvent(ctx, tx, userID, workoutID, domain.ActionRemoved, now); err != nil {
				return err
			}
		}
		deleted = int64(len(workoutIDs))
		return nil
	})
	return deleted, err
}

// CountActivities implements domain.ActivityStore.
func (s *Store) CountActivities(ctx context.Context, p query.Predicate) (int64, error) {
	return count(ctx, s.pool, "user_activity a", activityColumns, p)
}

// FindActivities implements domain.ActivityStore.
func (s *Store) FindActivities(ctx context.Context, p query.Predicate, order []query.Order, limit, offset int) ([]domain.Activity, error) {
	return find(ctx, s.pool, activitySelect, activityColumns, p, order, limit, offset, scanActivity)
}

// InsertActivity implements domain.ActivityStore.
func (s *Store) InsertActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO user_activity (user_id, activity_name, description, duration, calories_burned, category, difficulty, notes, date, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`
		err := tx.QueryRow(ctx, stmt, a.UserID, a.ActivityName, a.Description, a.Duration, a.CaloriesBurned,
			a.Category, a.Difficulty, a.Notes, a.Date, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
		if err != nil {
			return err
		}
		return insertActivityLogged(ctx, tx, a)
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}

// UpdateActivity implements domain.ActivityStore. The row is locked while
// the patch is applied.
func (s *Store) UpdateActivity(ctx context.Context, id int64, userID string, patch domain.ActivityPatch, at time.Time) (*domain.Activity, error) {
	var out *domain.Activity
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, activitySelect+" WHERE a.id = $1 AND a.user_id = $2 FOR UPDATE", id, userID)
		if err != nil {
			return err
		}
		current, err := pgx.CollectExactlyOneRow(rows, scanActivity)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		updated := patch.Apply(current)
		updated.UpdatedAt = at
		const stmt = `UPDATE user_activity SET activity_name = $3, description = $4, duration = $5, calories_burned = $6,
            category = $7, difficulty = $8, notes = $9, date = $10, updated_at = $11
            WHERE id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, stmt, id, userID, updated.ActivityName, updated.Description, updated.Duration,
			updated.CaloriesBurned, updated.Category, updated.Difficulty, updated.Notes,
			updated.Date, updated.UpdatedAt); err != nil {
			return err
		}
		if err := insertActivityUpdated(ctx, tx, updated); err != nil {
			return err
		}
		out = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteActivity implements domain.ActivityStore.
func (s *Store) DeleteActivity(ctx context.Context, id int64, userID string) (bool, error) {
	var deleted bool
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM user_activity WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		if !deleted {
			return nil
		}
		return insertActivityDeleted(ctx, tx, id, userID, s.now())
	})
	return deleted, err
}

// AggregateActivities implements domain.ActivityStore.
func (s *Store) AggregateActivities(ctx context.Context, userID string) ([]stats.GroupRow, error) {
	const stmt = `SELECT category, COUNT(*)::bigint, COALESCE(SUM(duration), 0)::bigint, COALESCE(SUM(calories_burned), 0)::bigint
        FROM user_activity WHERE user_id = $1 GROUP BY category`
	rows, err := s.pool.Query(ctx, stmt, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (stats.GroupRow, error) {
		var (
			g                         stats.GroupRow
			count, duration, calories int64
		)
		if err := row.Scan(&g.Category, &count, &duration, &calories); err != nil {
			return stats.GroupRow{}, err
		}
		g.Count, g.TotalDuration, g.TotalCalories = count, duration, calories
		return g, nil
	})
}

// ActivityDates implements domain.ActivityStore.
func (s *Store) ActivityDates(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT date FROM user_activity WHERE user_id = $1 AND date >= $2 ORDER BY date DESC`,
		userID, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}
