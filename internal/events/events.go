// Package events defines the payloads published for fitness mutations and
// how each event type is routed to Kafka.
package events

import "time"

// Event types.
const (
	TypeActivityLogged  = "activity.logged"
	TypeActivityUpdated = "activity.updated"
	TypeActivityDeleted = "activity.deleted"
	TypeBookmarkToggled = "bookmark.toggled"
)

// Topics.
const (
	TopicActivities = "fitness.activity_events"
	TopicBookmarks  = "fitness.bookmark_events"
)

// ActivityLogged is emitted when a user logs an activity.
type ActivityLogged struct {
	ActivityID     int64     `json:"activity_id"`
	UserID         string    `json:"user_id"`
	ActivityName   string    `json:"activity_name"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	Date           string    `json:"date"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ActivityUpdated carries the state of an activity after an edit.
type ActivityUpdated struct {
	ActivityID     int64     `json:"activity_id"`
	UserID         string    `json:"user_id"`
	ActivityName   string    `json:"activity_name"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	DurationMin    int       `json:"duration_min"`
	CaloriesBurned int       `json:"calories_burned"`
	Date           string    `json:"date"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ActivityDeleted is emitted when a user removes an activity.
type ActivityDeleted struct {
	ActivityID int64     `json:"activity_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookmarkToggled is emitted for every bookmark add or removal, whichever
// operation caused it.
type BookmarkToggled struct {
	UserID     string    `json:"user_id"`
	WorkoutID  int64     `json:"workout_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Route describes where an event type is published.
type Route struct {
	AggregateType string
	Topic         string
	SchemaSubject string
	Schema        string
}

var catalog = map[string]Route{
	TypeActivityLogged: {
		AggregateType: "activity",
		Topic:         TopicActivities,
		SchemaSubject: TopicActivities + "-" + TypeActivityLogged,
		Schema:        activityLoggedSchema,
	},
	TypeActivityUpdated: {
		AggregateType: "activity",
		Topic:         TopicActivities,
		SchemaSubject: TopicActivities + "-" + TypeActivityUpdated,
		Schema:        activityUpdatedSchema,
	},
	TypeActivityDeleted: {
		AggregateType: "activity",
		Topic:         TopicActivities,
		SchemaSubject: TopicActivities + "-" + TypeActivityDeleted,
		Schema:        activityDeletedSchema,
	},
	TypeBookmarkToggled: {
		AggregateType: "bookmark",
		Topic:         TopicBookmarks,
		SchemaSubject: TopicBookmarks + "-value",
		Schema:        bookmarkToggledSchema,
	},
}

// Lookup returns the route for an event type.
func Lookup(eventType string) (Route, bool) {
	r, ok := catalog[eventType]
	return r, ok
}

// Topics lists every topic events are published to.
func Topics() []string {
	return []string{TopicActivities, TopicBookmarks}
}
