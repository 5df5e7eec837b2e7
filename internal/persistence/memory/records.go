package memory

import (
	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/query"
)

type fieldMap map[query.Field]any

func (m fieldMap) Value(f query.Field) (any, bool) {
	v, ok := m[f]
	return v, ok
}

func workoutRecord(w domain.Workout) query.Record {
	return fieldMap{
		query.FieldID:         w.ID,
		query.FieldTitle:      w.Title,
		query.FieldCategory:   w.Category,
		query.FieldDifficulty: w.Difficulty,
		query.FieldInstructor: w.Instructor,
		query.FieldRating:     w.Rating,
		query.FieldCreatedAt:  w.CreatedAt,
		query.FieldUpdatedAt:  w.UpdatedAt,
	}
}

func bookmarkRecord(b domain.Bookmark) query.Record {
	return fieldMap{
		query.FieldID:        b.ID,
		query.FieldUserID:    b.UserID,
		query.FieldWorkoutID: b.WorkoutID,
		query.FieldCreatedAt: b.CreatedAt,
		query.FieldUpdatedAt: b.UpdatedAt,
	}
}

func activityRecord(a domain.Activity) query.Record {
	return fieldMap{
		query.FieldID:             a.ID,
		query.FieldUserID:         a.UserID,
		query.FieldActivityName:   a.ActivityName,
		query.FieldDuration:       a.Duration,
		query.FieldCaloriesBurned: a.CaloriesBurned,
		query.FieldCategory:       a.Category,
		query.FieldDifficulty:     a.Difficulty,
		query.FieldDate:           a.Date,
		query.FieldCreatedAt:      a.CreatedAt,
		query.FieldUpdatedAt:      a.UpdatedAt,
	}
}
