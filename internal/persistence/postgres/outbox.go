package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/events"
	"example.com/fitness/internal/query"
)

// insertOutbox records an integration event in tx. Events are keyed by user
// so one user's events stay ordered within a partition.
func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, userID, aggregateID string, payload any) error {
	route, ok := events.Lookup(eventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = tx.Exec(ctx, stmt,
		userID,
		route.AggregateType,
		aggregateID,
		eventType,
		route.Topic,
		route.SchemaSubject,
		userID,
		body,
		eventType+":"+uuid.NewString(),
	)
	return err
}

func insertBookmarkEvent(ctx context.Context, tx pgx.Tx, userID string, workoutID int64, action string, at time.Time) error {
	return insertOutbox(ctx, tx, events.TypeBookmarkToggled, userID, userID+":"+strconv.FormatInt(workoutID, 10), events.BookmarkToggled{
		UserID:     userID,
		WorkoutID:  workoutID,
		Action:     action,
		OccurredAt: at,
	})
}

func insertActivityLogged(ctx context.Context, tx pgx.Tx, a domain.Activity) error {
	return insertOutbox(ctx, tx, events.TypeActivityLogged, a.UserID, strconv.FormatInt(a.ID, 10), events.ActivityLogged{
		ActivityID:     a.ID,
		UserID:         a.UserID,
		ActivityName:   a.ActivityName,
		Category:       a.Category,
		Difficulty:     a.Difficulty,
		DurationMin:    a.Duration,
		CaloriesBurned: a.CaloriesBurned,
		Date:           a.Date.Format(query.DateLayout),
		OccurredAt:     a.CreatedAt,
	})
}

func insertActivityUpdated(ctx context.Context, tx pgx.Tx, a domain.Activity) error {
	return insertOutbox(ctx, tx, events.TypeActivityUpdated, a.UserID, strconv.FormatInt(a.ID, 10), events.ActivityUpdated{
		ActivityID:     a.ID,
		UserID:         a.UserID,
		ActivityName:   a.ActivityName,
		Category:       a.Category,
		Difficulty:     a.Difficulty,
		DurationMin:    a.Duration,
		CaloriesBurned: a.CaloriesBurned,
		Date:           a.Date.Format(query.DateLayout),
		OccurredAt:     a.UpdatedAt,
	})
}

func insertActivityDeleted(ctx context.Context, tx pgx.Tx, id int64, userID string, at time.Time) error {
	return insertOutbox(ctx, tx, events.TypeActivityDeleted, userID, strconv.FormatInt(id, 10), events.ActivityDeleted{
		ActivityID: id,
		UserID:     userID,
		OccurredAt: at,
	})
}
