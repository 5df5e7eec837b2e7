// Package stats derives per-user activity summaries and the daily streak.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CategoryStat summarizes the activities logged under one category.
type CategoryStat struct {
	Category      string `json:"category"`
	Count         int64  `json:"count"`
	TotalDuration int64  `json:"totalDuration"`
	TotalCalories int64  `json:"totalCalories"`
}

// UserStats is the summary returned for a user's full activity history.
type UserStats struct {
	TotalActivities int64          `json:"totalActivities"`
	TotalDuration   int64          `json:"totalDuration"`
	TotalCalories   int64          `json:"totalCalories"`
	CurrentStreak   int            `json:"currentStreak"`
	CategoryStats   []CategoryStat `json:"categoryStats"`
}

// Entry is the slice of an activity the aggregator needs.
type Entry struct {
	Category string
	Duration int64
	Calories int64
	Date     time.Time
}

// GroupRow is one row of a store-side GROUP BY category aggregate. The
// numeric columns are left untyped because drivers return sums as integers,
// numerics or text depending on the column type.
type GroupRow struct {
	Category      string
	Count         any
	TotalDuration any
	TotalCalories any
}

// Aggregate summarizes in-process entries. The streak is left at zero; use
// CurrentStreak with the entry dates.
func Aggregate(entries []Entry) UserStats {
	byCategory := make(map[string]*CategoryStat)
	for _, e := range entries {
		cs, ok := byCategory[e.Category]
		if !ok {
			cs = &CategoryStat{Category: e.Category}
			byCategory[e.Category] = cs
		}
		cs.Count++
		cs.TotalDuration += e.Duration
		cs.TotalCalories += e.Calories
	}

	rows := make([]CategoryStat, 0, len(byCategory))
	for _, cs := range byCategory {
		rows = append(rows, *cs)
	}
	return summarize(rows)
}

// FromGroups summarizes store-side group aggregates. Totals are the sums of
// the group values, so the category counts always add up to the total.
func FromGroups(groups []GroupRow) UserStats {
	rows := make([]CategoryStat, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, CategoryStat{
			Category:      g.Category,
			Count:         Coerce(g.Count),
			TotalDuration: Coerce(g.TotalDuration),
			TotalCalories: Coerce(g.TotalCalories),
		})
	}
	return summarize(rows)
}

func summarize(rows []CategoryStat) UserStats {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })

	out := UserStats{CategoryStats: rows}
	for _, cs := range rows {
		out.TotalActivities += cs.Count
		out.TotalDuration += cs.TotalDuration
		out.TotalCalories += cs.TotalCalories
	}
	return out
}

// Coerce converts a driver aggregate value to int64. Nil and unparsable
// values become 0.
func Coerce(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return roundFloat(float64(n))
	case float64:
		return roundFloat(n)
	case string:
		return ParseAggregate(n)
	case []byte:
		return ParseAggregate(string(n))
	case fmt.Stringer:
		return ParseAggregate(n.String())
	default:
		return 0
	}
}

// ParseAggregate parses a textual aggregate such as "1250" or "1250.0".
func ParseAggregate(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return roundFloat(f)
}

func roundFloat(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f))
}
