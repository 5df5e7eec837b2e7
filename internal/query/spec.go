// Package query turns raw listing parameters into validated query specs,
// store predicates and pagination metadata.
package query

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Resource identifies one of the listable collections.
type Resource string

const (
	ResourceWorkouts   Resource = "workouts"
	ResourceBookmarks  Resource = "bookmarks"
	ResourceActivities Resource = "activities"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit representable for any limit up to MaxLimit.
	MaxPage = math.MaxInt / MaxLimit
)

// WorkoutDifficulties are the values accepted by the workout difficulty
// filter.
var WorkoutDifficulties = []string{"Beginner", "Intermediate", "Advanced"}

// DateLayout is the calendar-day format accepted for date filters.
const DateLayout = "2006-01-02"

// Field is a record attribute that predicates and orderings may reference.
// Stores translate fields to columns or accessors; nothing else reaches them.
type Field string

const (
	FieldID             Field = "id"
	FieldUserID         Field = "userId"
	FieldWorkoutID      Field = "workoutId"
	FieldCreatedAt      Field = "createdAt"
	FieldUpdatedAt      Field = "updatedAt"
	FieldTitle          Field = "title"
	FieldCategory       Field = "category"
	FieldDifficulty     Field = "difficulty"
	FieldInstructor     Field = "instructor"
	FieldRating         Field = "rating"
	FieldActivityName   Field = "activityName"
	FieldDuration       Field = "duration"
	FieldCaloriesBurned Field = "caloriesBurned"
	FieldDate           Field = "date"
)

var sortable = map[Resource][]Field{
	ResourceWorkouts: {
		FieldCreatedAt, FieldUpdatedAt, FieldTitle, FieldCategory,
		FieldDifficulty, FieldRating, FieldInstructor,
	},
	ResourceBookmarks: {
		FieldCreatedAt, FieldUpdatedAt, FieldWorkoutID,
	},
	ResourceActivities: {
		FieldDate, FieldCreatedAt, FieldUpdatedAt, FieldDuration,
		FieldCaloriesBurned, FieldActivityName, FieldCategory, FieldDifficulty,
	},
}

var defaultSort = map[Resource]Field{
	ResourceWorkouts:   FieldCreatedAt,
	ResourceBookmarks:  FieldCreatedAt,
	ResourceActivities: FieldDate,
}

// SortableFields returns the allow-list of sort fields for a resource.
func SortableFields(r Resource) []Field {
	fields := sortable[r]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// RawOptions carries listing parameters exactly as received, e.g. from a URL
// query string. Every field is optional.
type RawOptions struct {
	Page       string
	Limit      string
	SortBy     string
	SortOrder  string
	Category   string
	Difficulty string
	Instructor string
	MinRating  string
	Search     string
	StartDate  string
	EndDate    string
}

// RawOptionsFromValues reads the recognised keys from url.Values.
func RawOptionsFromValues(v url.Values) RawOptions {
	return RawOptions{
		Page:       v.Get("page"),
		Limit:      v.Get("limit"),
		SortBy:     v.Get("sortBy"),
		SortOrder:  v.Get("sortOrder"),
		Category:   v.Get("category"),
		Difficulty: v.Get("difficulty"),
		Instructor: v.Get("instructor"),
		MinRating:  v.Get("minRating"),
		Search:     v.Get("search"),
		StartDate:  v.Get("startDate"),
		EndDate:    v.Get("endDate"),
	}
}

// Filters holds the normalized filter values. Zero values mean unconstrained.
type Filters struct {
	Category   string
	Difficulty string
	Instructor string
	MinRating  *float64
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
}

// Spec is a validated, fully defaulted listing request.
type Spec struct {
	Resource  Resource
	Page      int
	Limit     int
	SortBy    Field
	SortOrder Direction
	Filters   Filters
}

// Offset is the number of matching records skipped before the page starts.
// It saturates at math.MaxInt instead of overflowing.
func (s Spec) Offset() int {
	if s.Page <= 1 || s.Limit <= 0 {
		return 0
	}
	if s.Page-1 > math.MaxInt/s.Limit {
		return math.MaxInt
	}
	return (s.Page - 1) * s.Limit
}

// Order returns the requested ordering followed by an id tiebreaker in the
// same direction, so page boundaries are stable between requests.
func (s Spec) Order() []Order {
	order := []Order{{Field: s.SortBy, Direction: s.SortOrder}}
	if s.SortBy != FieldID {
		order = append(order, Order{Field: FieldID, Direction: s.SortOrder})
	}
	return order
}

// Order is one ORDER BY term.
type Order struct {
	Field     Field
	Direction Direction
}

// ValidationError reports a listing parameter that cannot be honoured.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// Normalize validates raw options for a resource and fills in defaults.
//
// Page and limit never fail: unparsable values fall back to their defaults
// and parsed values are clamped into range. Limit is capped at MaxLimit, so
// limit=200 yields a Spec (and pagination metadata) with limit 100. Page is
// capped at MaxPage. Sort fields, sort order, difficulty, ratings and dates
// are rejected with a *ValidationError when malformed.
func Normalize(r Resource, raw RawOptions) (Spec, error) {
	if _, ok := sortable[r]; !ok {
		return Spec{}, &ValidationError{Field: "resource", Value: string(r), Reason: "unknown resource"}
	}

	spec := Spec{
		Resource:  r,
		Page:      parsePage(raw.Page),
		Limit:     parseLimit(raw.Limit),
		SortBy:    defaultSort[r],
		SortOrder: Desc,
	}

	if sortBy := strings.TrimSpace(raw.SortBy); sortBy != "" {
		field, ok := lookupSortField(r, sortBy)
		if !ok {
			return Spec{}, &ValidationError{Field: "sortBy", Value: sortBy, Reason: "not a sortable field"}
		}
		spec.SortBy = field
	}

	if order := strings.TrimSpace(raw.SortOrder); order != "" {
		switch strings.ToUpper(order) {
		case string(Asc):
			spec.SortOrder = Asc
		case string(Desc):
			spec.SortOrder = Desc
		default:
			return Spec{}, &ValidationError{Field: "sortOrder", Value: order, Reason: "must be ASC or DESC"}
		}
	}

	filters, err := normalizeFilters(r, raw)
	if err != nil {
		return Spec{}, err
	}
	spec.Filters = filters
	return spec, nil
}

func normalizeFilters(r Resource, raw RawOptions) (Filters, error) {
	var f Filters
	switch r {
	case ResourceWorkouts:
		f.Category = strings.TrimSpace(raw.Category)
		if value := strings.TrimSpace(raw.Difficulty); value != "" {
			i := slices.IndexFunc(WorkoutDifficulties, func(d string) bool { return strings.EqualFold(d, value) })
			if i < 0 {
				return Filters{}, &ValidationError{Field: "difficulty", Value: value, Reason: "must be one of " + strings.Join(WorkoutDifficulties, ", ")}
			}
			f.Difficulty = WorkoutDifficulties[i]
		}
		f.Instructor = strings.TrimSpace(raw.Instructor)
		f.Search = strings.TrimSpace(raw.Search)
		if value := strings.TrimSpace(raw.MinRating); value != "" {
			rating, err := strconv.ParseFloat(value, 64)
			if err != nil || rating < 0 || rating > 5 {
				return Filters{}, &ValidationError{Field: "minRating", Value: value, Reason: "must be a number between 0 and 5"}
			}
			f.MinRating = &rating
		}
	case ResourceActivities:
		f.Category = strings.TrimSpace(raw.Category)
		start, err := parseDate("startDate", raw.StartDate)
		if err != nil {
			return Filters{}, err
		}
		end, err := parseDate("endDate", raw.EndDate)
		if err != nil {
			return Filters{}, err
		}
		if start != nil && end != nil && start.After(*end) {
			return Filters{}, &ValidationError{Field: "startDate", Value: raw.StartDate, Reason: "must not be after endDate"}
		}
		f.StartDate, f.EndDate = start, end
	}
	return f, nil
}

func lookupSortField(r Resource, name string) (Field, bool) {
	for _, field := range sortable[r] {
		if strings.EqualFold(string(field), name) {
			return field, true
		}
	}
	return "", false
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return DefaultPage
	}
	return min(page, MaxPage)
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func parseDate(field, raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, &ValidationError{Field: field, Value: value, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return &day, nil
}
