package memory

import "example.com/fitness/internal/domain"

// NewSeededStore returns a store holding a small workout catalog for local
// development.
func NewSeededStore() *Store {
	s := NewStore()
	for _, w := range seedCatalog {
		s.AddWorkout(w)
	}
	return s
}

var seedCatalog = []domain.Workout{
	{
		Title:      "Morning Mobility Flow",
		Category:   "Yoga",
		Duration:   "20 min",
		Difficulty: "Beginner",
		Calories:   "80-120",
		Rating:     4.6,
		Instructor: "Maya Lin",
		Thumbnail:  "https://images.example.com/workouts/mobility-flow.jpg",
		Tags:       []string{"mobility", "stretching", "morning"},
	},
	{
		Title:      "HIIT Core Crusher",
		Category:   "HIIT",
		Duration:   "30 min",
		Difficulty: "Advanced",
		Calories:   "350-450",
		Rating:     4.8,
		Instructor: "Carlos Reyes",
		Thumbnail:  "https://images.example.com/workouts/hiit-core.jpg",
		Tags:       []string{"core", "intervals"},
	},
	{
		Title:      "Steady State Cycling",
		Category:   "Cardio",
		Duration:   "45 min",
		Difficulty: "Intermediate",
		Calories:   "400-500",
		Rating:     4.2,
		Instructor: "Ava Brooks",
		Thumbnail:  "https://images.example.com/workouts/cycling.jpg",
		Tags:       []string{"endurance", "bike"},
	},
	{
		Title:      "Full Body Strength",
		Category:   "Strength",
		Duration:   "40 min",
		Difficulty: "Intermediate",
		Calories:   "300-380",
		Rating:     4.5,
		Instructor: "Jordan Hale",
		Thumbnail:  "https://images.example.com/workouts/full-body.jpg",
		Tags:       []string{"dumbbells", "compound"},
	},
	{
		Title:      "Evening Wind Down",
		Category:   "Yoga",
		Duration:   "15 min",
		Difficulty: "Beginner",
		Calories:   "50-70",
		Rating:     4.9,
		Instructor: "Maya Lin",
		Thumbnail:  "https://images.example.com/workouts/wind-down.jpg",
		Tags:       []string{"relaxation", "breathing"},
	},
}
