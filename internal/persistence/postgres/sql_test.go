package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/query"
)

func TestWhereRendersClauses(t *testing.T) {
	spec, err := query.Normalize(query.ResourceWorkouts, query.RawOptions{Category: "Yoga", MinRating: "4", Search: "50%_off"})
	require.NoError(t, err)

	var params args
	where, err := workoutColumns.where(query.ComposeWorkouts(spec), &params)
	require.NoError(t, err)
	require.Equal(t,
		` WHERE w.category = $1 AND w.rating >= $2 AND (w.title ILIKE $3 ESCAPE '\' OR w.instructor ILIKE $4 ESCAPE '\' OR w.category ILIKE $5 ESCAPE '\')`,
		where)
	require.Equal(t, args{"Yoga", 4.0, `%50\%\_off%`, `%50\%\_off%`, `%50\%\_off%`}, params)
}

func TestWhereEmptyPredicate(t *testing.T) {
	var params args
	where, err := workoutColumns.where(query.Predicate{}, &params)
	require.NoError(t, err)
	require.Empty(t, where)
	require.Empty(t, params)
}

func TestWhereOwnerAndDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := query.OwnedBy("user-1").Where(query.FieldDate, query.OpGte, start)

	var params args
	where, err := activityColumns.where(p, &params)
	require.NoError(t, err)
	require.Equal(t, ` WHERE a.user_id = $1 AND a.date >= $2`, where)
	require.Equal(t, args{"user-1", start}, params)
}

func TestWhereRejectsUnknownField(t *testing.T) {
	var params args
	_, err := bookmarkColumns.where(query.Predicate{}.Where(query.FieldRating, query.OpEq, 1), &params)
	require.Error(t, err)
}

func TestOrderByAddsDirection(t *testing.T) {
	spec, err := query.Normalize(query.ResourceActivities, query.RawOptions{SortBy: "caloriesBurned", SortOrder: "asc"})
	require.NoError(t, err)

	order, err := activityColumns.orderBy(spec.Order())
	require.NoError(t, err)
	require.Equal(t, ` ORDER BY a.calories_burned ASC, a.id ASC`, order)

	_, err = workoutColumns.orderBy([]query.Order{{Field: query.FieldDate, Direction: query.Asc}})
	require.Error(t, err)
}

func TestWindowParams(t *testing.T) {
	params := args{"x"}
	require.Equal(t, " LIMIT $2 OFFSET $3", window(10, 20, &params))
	require.Equal(t, args{"x", 10, 20}, params)

	params = nil
	require.Equal(t, " LIMIT $1", window(5, 0, &params))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
	require.Equal(t, "plain", escapeLike("plain"))
}
