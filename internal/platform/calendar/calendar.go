// Package calendar groups absolute instants into calendar days of an explicit
// location instead of locale-formatted date strings.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const KeyLayout = "2006-01-02"

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// Contains reports whether t falls on the calendar day that starts at day.
func Contains(day, t time.Time, loc *time.Location) bool {
	return SameDay(day, t, loc)
}

func Key(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format(KeyLayout)
}

func ParseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(KeyLayout, strings.TrimSpace(s), orLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return day, nil
}

// DistinctDays returns the start of every calendar day touched by instants,
// newest first.
func DistinctDays(instants []time.Time, loc *time.Location) []time.Time {
	seen := map[int64]bool{}
	var days []time.Time
	for _, t := range instants {
		day := StartOfDay(t, loc)
		if seen[day.Unix()] {
			continue
		}
		seen[day.Unix()] = true
		days = append(days, day)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].After(days[b]) })
	return days
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
