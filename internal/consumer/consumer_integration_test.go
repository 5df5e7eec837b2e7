//go:build integration

package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/events"
	"example.com/fitness/internal/outbox"
	"example.com/fitness/internal/testsupport"
)

func TestEventLogHandlerIgnoresRedelivery(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	handler := NewEventLogHandler(pool)

	msg := Message{
		Topic:         events.TopicBookmarks,
		Partition:     0,
		Offset:        5,
		EventType:     events.TypeBookmarkToggled,
		UserID:        "user-1",
		AggregateID:   "3",
		SchemaSubject: "fitness.bookmark_events-value",
		SchemaID:      42,
		Payload:       json.RawMessage(`{"user_id":"user-1","workout_id":3,"action":"added"}`),
		Timestamp:     time.Now().UTC(),
	}
	require.NoError(t, handler.Handle(ctx, msg))
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM fitness_event_log`).Scan(&count))
	require.Equal(t, 1, count)

	var stored []byte
	require.NoError(t, pool.QueryRow(ctx, `SELECT payload FROM fitness_event_log WHERE user_id = $1`, "user-1").Scan(&stored))
	require.JSONEq(t, string(msg.Payload), string(stored))
}

func TestKafkaRoundTripIntoEventLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	pool := testsupport.StartPostgres(ctx, t)
	broker := testsupport.StartKafka(ctx, t, events.TopicActivities)

	producer := outbox.NewKafkaProducer([]string{broker})
	defer producer.Close()

	payload, err := json.Marshal(events.ActivityLogged{ActivityID: 12, UserID: "user-9", ActivityName: "Run", Category: "Cardio", Difficulty: "Moderate", DurationMin: 30, CaloriesBurned: 300, Date: "2025-06-10"})
	require.NoError(t, err)

	value := make([]byte, 5+len(payload))
	value[4] = 7
	copy(value[5:], payload)
	require.NoError(t, producer.WriteMessages(ctx, events.TopicActivities, kafka.Message{
		Key:   []byte("user-9"),
		Value: value,
		Headers: []kafka.Header{
			{Key: outbox.HeaderEventType, Value: []byte(events.TypeActivityLogged)},
			{Key: outbox.HeaderUserID, Value: []byte("user-9")},
			{Key: outbox.HeaderAggregateID, Value: []byte("12")},
		},
	}))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     "fitness-event-log-test",
		Topic:       events.TopicActivities,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer reader.Close()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- NewProcessor(reader, NewEventLogHandler(pool)).Run(runCtx) }()

	require.Eventually(t, func() bool {
		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM fitness_event_log WHERE user_id = 'user-9' AND schema_id = 7`).Scan(&count); err != nil {
			return false
		}
		return count == 1
	}, time.Minute, 500*time.Millisecond)

	stop()
	require.ErrorIs(t, <-done, context.Canceled)
}
