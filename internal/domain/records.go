// Package domain defines the fitness records, their store contracts and the
// service orchestrating listing, statistics and mutations.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Workout is a catalog entry. Duration and Calories are free text such as
// "30 min" or "250-300".
type Workout struct {
	ID         int64
	Title      string
	Category   string
	Duration   string
	Difficulty string
	Calories   string
	Rating     float64
	Instructor string
	Thumbnail  string
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Bookmark marks a workout as saved by a user. Workout is populated on
// listing and may be nil when the workout has been removed.
type Bookmark struct {
	ID        int64
	UserID    string
	WorkoutID int64
	Workout   *Workout
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Activity is a workout session logged by a user. Date is a calendar day at
// midnight UTC.
type Activity struct {
	ID             int64
	UserID         string
	ActivityName   string
	Description    string
	Duration       int
	CaloriesBurned int
	Category       string
	Difficulty     string
	Notes          string
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const (
	DefaultActivityCategory   = "Other"
	DefaultActivityDifficulty = "Moderate"
)

var activityDifficulties = []string{"Easy", "Moderate", "Hard"}

// NewActivity is the input for logging an activity. Empty Category and
// Difficulty and a nil Date take their defaults.
type NewActivity struct {
	UserID         string
	ActivityName   string
	Description    string
	Duration       int
	CaloriesBurned int
	Category       string
	Difficulty     string
	Notes          string
	Date           *time.Time
}

// ActivityPatch holds the fields to change on an activity. Nil fields are
// left untouched.
type ActivityPatch struct {
	ActivityName   *string
	Description    *string
	Duration       *int
	CaloriesBurned *int
	Category       *string
	Difficulty     *string
	Notes          *string
	Date           *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p ActivityPatch) IsEmpty() bool {
	return p.ActivityName == nil && p.Description == nil && p.Duration == nil &&
		p.CaloriesBurned == nil && p.Category == nil && p.Difficulty == nil &&
		p.Notes == nil && p.Date == nil
}

// Apply returns a copy of a with the patch applied.
func (p ActivityPatch) Apply(a Activity) Activity {
	if p.ActivityName != nil {
		a.ActivityName = *p.ActivityName
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.CaloriesBurned != nil {
		a.CaloriesBurned = *p.CaloriesBurned
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Difficulty != nil {
		a.Difficulty = *p.Difficulty
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Date != nil {
		a.Date = calendarDay(*p.Date)
	}
	return a
}

func (p ActivityPatch) validate() error {
	if p.ActivityName != nil && strings.TrimSpace(*p.ActivityName) == "" {
		return errors.New("activityName must not be empty")
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if p.CaloriesBurned != nil && *p.CaloriesBurned < 0 {
		return errors.New("caloriesBurned must not be negative")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return errors.New("category must not be empty")
	}
	if p.Difficulty != nil && !slices.Contains(activityDifficulties, *p.Difficulty) {
		return fmt.Errorf("difficulty must be one of %s", strings.Join(activityDifficulties, ", "))
	}
	return nil
}

func (n NewActivity) validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return errors.New("userId is required")
	}
	if strings.TrimSpace(n.ActivityName) == "" {
		return errors.New("activityName is required")
	}
	if n.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	if n.CaloriesBurned < 0 {
		return errors.New("caloriesBurned must not be negative")
	}
	if n.Difficulty != "" && !slices.Contains(activityDifficulties, n.Difficulty) {
		return fmt.Errorf("difficulty must be one of %s", strings.Join(activityDifficulties, ", "))
	}
	return nil
}

// calendarDay maps t to midnight UTC of the same calendar day, which is how
// activity dates are stored.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
