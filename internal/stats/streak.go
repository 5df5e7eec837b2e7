package stats

import "time"

// StreakWindowDays bounds how far back the streak scan looks. A user active
// every day for longer than the window still reports StreakWindowDays.
const StreakWindowDays = 30

// Clock supplies the current calendar day.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

// Today returns midnight of the current day in the clock's location.
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return Day(time.Now().In(loc))
}

// FixedClock always reports the same day.
type FixedClock time.Time

func (c FixedClock) Today() time.Time {
	return Day(time.Time(c))
}

// Day truncates t to midnight in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowStart is the earliest day that can contribute to a streak ending
// today.
func WindowStart(today time.Time) time.Time {
	return Day(today).AddDate(0, 0, -(StreakWindowDays - 1))
}

// CurrentStreak counts consecutive days with at least one activity, walking
// back from today. The scan stops at the first day without activity, so a
// user who has not logged anything today has a streak of 0.
//
// Dates are compared by calendar day; the location of each date is ignored.
func CurrentStreak(today time.Time, dates []time.Time) int {
	active := make(map[civilDate]struct{}, len(dates))
	for _, d := range dates {
		active[civilOf(d)] = struct{}{}
	}

	start := Day(today)
	streak := 0
	for i := 0; i < StreakWindowDays; i++ {
		if _, ok := active[civilOf(start.AddDate(0, 0, -i))]; !ok {
			break
		}
		streak++
	}
	return streak
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civilOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}
