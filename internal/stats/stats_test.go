package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentStreakConsecutiveDays(t *testing.T) {
	today := day(2025, 6, 10)
	dates := []time.Time{day(2025, 6, 10), day(2025, 6, 9), day(2025, 6, 8), day(2025, 6, 6)}

	require.Equal(t, 3, CurrentStreak(today, dates))
}

func TestCurrentStreakNothingToday(t *testing.T) {
	today := day(2025, 6, 10)
	dates := []time.Time{day(2025, 6, 9), day(2025, 6, 8), day(2025, 6, 7)}

	require.Zero(t, CurrentStreak(today, dates))
	require.Zero(t, CurrentStreak(today, nil))
}

func TestCurrentStreakCountsDuplicateDaysOnce(t *testing.T) {
	today := day(2025, 1, 2)
	dates := []time.Time{
		day(2025, 1, 2),
		time.Date(2025, 1, 2, 18, 30, 0, 0, time.UTC),
		day(2025, 1, 1),
		day(2024, 12, 31),
		day(2024, 12, 31),
	}

	require.Equal(t, 3, CurrentStreak(today, dates))
}

func TestCurrentStreakIsCappedByWindow(t *testing.T) {
	today := day(2025, 3, 31)
	var dates []time.Time
	for i := 0; i < 45; i++ {
		dates = append(dates, today.AddDate(0, 0, -i))
	}

	require.Equal(t, StreakWindowDays, CurrentStreak(today, dates))
}

func TestCurrentStreakIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)
	dates := []time.Time{day(2025, 6, 10), day(2025, 6, 9)}

	require.Equal(t, 2, CurrentStreak(today, dates))
}

func TestWindowStart(t *testing.T) {
	require.Equal(t, day(2025, 6, 1), WindowStart(day(2025, 6, 30)))
}

func TestClocks(t *testing.T) {
	fixed := FixedClock(time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC))
	require.Equal(t, day(2025, 6, 10), fixed.Today())

	loc := time.FixedZone("UTC+14", 14*60*60)
	today := SystemClock{Location: loc}.Today()
	require.Equal(t, loc, today.Location())
	require.Zero(t, today.Hour())
}

func TestAggregateSums(t *testing.T) {
	entries := []Entry{
		{Category: "Running", Duration: 30, Calories: 300},
		{Category: "Yoga", Duration: 60, Calories: 200},
		{Category: "Running", Duration: 45, Calories: 450},
	}

	got := Aggregate(entries)
	require.EqualValues(t, 3, got.TotalActivities)
	require.EqualValues(t, 135, got.TotalDuration)
	require.EqualValues(t, 950, got.TotalCalories)
	require.Equal(t, []CategoryStat{
		{Category: "Running", Count: 2, TotalDuration: 75, TotalCalories: 750},
		{Category: "Yoga", Count: 1, TotalDuration: 60, TotalCalories: 200},
	}, got.CategoryStats)
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	require.Zero(t, got.TotalActivities)
	require.Zero(t, got.TotalDuration)
	require.Zero(t, got.TotalCalories)
	require.NotNil(t, got.CategoryStats)
	require.Empty(t, got.CategoryStats)
}

func TestAggregateCategoryTotalsMatchOverall(t *testing.T) {
	categories := []string{"Running", "Cycling", "Yoga", "Other"}
	var entries []Entry
	for i := 0; i < 97; i++ {
		entries = append(entries, Entry{
			Category: categories[i%len(categories)],
			Duration: int64(i * 3),
			Calories: int64(i*7 + 1),
		})
	}

	got := Aggregate(entries)
	var count, duration, calories int64
	for _, cs := range got.CategoryStats {
		count += cs.Count
		duration += cs.TotalDuration
		calories += cs.TotalCalories
	}
	require.EqualValues(t, len(entries), got.TotalActivities)
	require.Equal(t, got.TotalActivities, count)
	require.Equal(t, got.TotalDuration, duration)
	require.Equal(t, got.TotalCalories, calories)
}

func TestFromGroupsParsesTextualAggregates(t *testing.T) {
	got := FromGroups([]GroupRow{
		{Category: "Yoga", Count: int64(2), TotalDuration: "120", TotalCalories: []byte("410.0")},
		{Category: "Cycling", Count: "1", TotalDuration: 90.0, TotalCalories: "n/a"},
		{Category: "Other", Count: int32(1), TotalDuration: nil, TotalCalories: 12},
	})

	require.EqualValues(t, 4, got.TotalActivities)
	require.EqualValues(t, 210, got.TotalDuration)
	require.EqualValues(t, 422, got.TotalCalories)
	require.Equal(t, "Cycling", got.CategoryStats[0].Category)
	require.Zero(t, got.CategoryStats[0].TotalCalories)
}

func TestParseAggregate(t *testing.T) {
	require.EqualValues(t, 1250, ParseAggregate("1250"))
	require.EqualValues(t, 1250, ParseAggregate(" 1250.0 "))
	require.EqualValues(t, 0, ParseAggregate(""))
	require.EqualValues(t, 0, ParseAggregate("twelve"))
	require.EqualValues(t, 0, ParseAggregate("NaN"))
}
